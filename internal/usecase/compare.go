package usecase

import (
	"context"
	"fmt"

	"github.com/winapi-history/winapidb/internal/database"
)

// SymbolLine is a symbol as listed in a comparison.
type SymbolLine struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
}

// Comparison lists what changed between two operating systems.
// Meta-functions are not listed.
type Comparison struct {
	Old            database.OperatingSystemRecord `json:"-"`
	New            database.OperatingSystemRecord `json:"-"`
	OldName        string                         `json:"old"`
	NewName        string                         `json:"new"`
	AddedDlls      []string                       `json:"added_dlls"`
	RemovedDlls    []string                       `json:"removed_dlls"`
	AddedSymbols   []SymbolLine                   `json:"added_symbols"`
	RemovedSymbols []SymbolLine                   `json:"removed_symbols"`
}

// CompareOperatingSystems reports the DLLs and symbols present on one of
// the two operating systems and not on the other. An unknown short name
// yields database.ErrNotFound.
func CompareOperatingSystems(ctx context.Context, dbCtx *database.Context, oldShort, newShort string) (*Comparison, error) {
	osRepo := database.NewOperatingSystemRepository(dbCtx)

	oldOS, err := findOperatingSystem(ctx, osRepo, oldShort)
	if err != nil {
		return nil, err
	}
	newOS, err := findOperatingSystem(ctx, osRepo, newShort)
	if err != nil {
		return nil, err
	}

	unlock := dbCtx.Shared()
	defer unlock()

	reports := database.NewReportQuery(dbCtx)
	cmp := &Comparison{
		Old:     *oldOS,
		New:     *newOS,
		OldName: oldOS.DisplayName(),
		NewName: newOS.DisplayName(),
	}

	if cmp.AddedDlls, err = reports.DllPathsOnlyIn(ctx, newOS.ID, oldOS.ID); err != nil {
		return nil, err
	}
	if cmp.RemovedDlls, err = reports.DllPathsOnlyIn(ctx, oldOS.ID, newOS.ID); err != nil {
		return nil, err
	}

	added, err := reports.SymbolsOnlyIn(ctx, newOS.ID, oldOS.ID)
	if err != nil {
		return nil, err
	}
	if cmp.AddedSymbols, err = symbolLines(added); err != nil {
		return nil, err
	}

	removed, err := reports.SymbolsOnlyIn(ctx, oldOS.ID, newOS.ID)
	if err != nil {
		return nil, err
	}
	if cmp.RemovedSymbols, err = symbolLines(removed); err != nil {
		return nil, err
	}

	return cmp, nil
}

func findOperatingSystem(ctx context.Context, repo *database.OperatingSystemRepository, shortName string) (*database.OperatingSystemRecord, error) {
	rec, err := repo.FindByShortName(ctx, shortName)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("operating system %q: %w", shortName, database.ErrNotFound)
	}
	return rec, nil
}

func symbolLines(summaries []database.SymbolSummary) ([]SymbolLine, error) {
	lines := make([]SymbolLine, 0, len(summaries))
	for _, s := range summaries {
		rec, err := database.SymbolRecordFromSummary(s)
		if err != nil {
			return nil, err
		}
		lines = append(lines, SymbolLine{ID: rec.ID, DisplayName: rec.DisplayName()})
	}
	return lines, nil
}
