package usecase

import (
	"context"

	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/identity"
	"github.com/winapi-history/winapidb/internal/services"
)

// DllPlacement is one DLL exporting the symbol on one operating system.
type DllPlacement struct {
	ID              int64  `json:"id"`
	Path            string `json:"path"`
	ObservedOrdinal *int64 `json:"observed_ordinal,omitempty"`
}

// OSPlacement groups the DLLs exporting the symbol on one operating system.
type OSPlacement struct {
	ID          int64          `json:"id"`
	ShortName   string         `json:"short_name"`
	DisplayName string         `json:"display_name"`
	Dlls        []DllPlacement `json:"dlls"`
}

// SymbolReport describes one symbol and everywhere it is available.
type SymbolReport struct {
	ID               int64         `json:"id"`
	DisplayName      string        `json:"display_name"`
	RawName          *string       `json:"raw_name,omitempty"`
	DllName          *string       `json:"dll_name,omitempty"`
	Ordinal          *int64        `json:"ordinal,omitempty"`
	FriendlyName     *string       `json:"friendly_name,omitempty"`
	IsMetaFunc       bool          `json:"is_meta_func"`
	OperatingSystems []OSPlacement `json:"operating_systems"`
}

type Symbol struct {
	dbCtx         *database.Context
	symbolService *services.SymbolService
	reports       *database.ReportQuery
}

func NewSymbol(dbCtx *database.Context) *Symbol {
	return &Symbol{
		dbCtx:         dbCtx,
		symbolService: services.NewSymbolService(dbCtx),
		reports:       database.NewReportQuery(dbCtx),
	}
}

// Report returns the symbol with its DLLs grouped by operating system, or
// nil when the symbol is unknown.
func (u *Symbol) Report(ctx context.Context, id identity.Identity) (*SymbolReport, error) {
	rec, err := findSymbol(ctx, u.symbolService, id)
	if err != nil || rec == nil {
		return nil, err
	}

	unlock := u.dbCtx.Shared()
	placements, err := u.reports.PlacementsForSymbol(ctx, rec.ID)
	unlock()
	if err != nil {
		return nil, err
	}

	rawName, dllName, ordinal, friendly := identity.Parts(rec.Identity)
	report := &SymbolReport{
		ID:               rec.ID,
		DisplayName:      rec.DisplayName(),
		RawName:          rawName,
		DllName:          dllName,
		Ordinal:          ordinal,
		FriendlyName:     friendly,
		IsMetaFunc:       rec.IsMetaFunc,
		OperatingSystems: []OSPlacement{},
	}

	for _, p := range placements {
		n := len(report.OperatingSystems)
		if n == 0 || report.OperatingSystems[n-1].ID != p.OSID {
			os := database.OperatingSystemRecord{ID: p.OSID, ShortName: p.OSShortName, LongName: p.OSLongName}
			report.OperatingSystems = append(report.OperatingSystems, OSPlacement{
				ID:          os.ID,
				ShortName:   os.ShortName,
				DisplayName: os.DisplayName(),
			})
			n++
		}
		group := &report.OperatingSystems[n-1]
		group.Dlls = append(group.Dlls, DllPlacement{
			ID:              p.DllID,
			Path:            p.DllPath,
			ObservedOrdinal: p.ObservedOrdinal,
		})
	}

	return report, nil
}
