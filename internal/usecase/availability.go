package usecase

import (
	"context"
	"fmt"

	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/identity"
	"github.com/winapi-history/winapidb/internal/services"
)

// AvailabilityInput names the facets to fix. Empty fields are left open.
type AvailabilityInput struct {
	Symbol  *SymbolOptions
	DllPath string
	OS      string
}

// AvailabilityResult is the matching facts plus the structure that served
// them.
type AvailabilityResult struct {
	Pattern string                        `json:"pattern"`
	Facts   []database.AvailabilityRecord `json:"facts"`
}

// QueryAvailability resolves names to ids and runs the availability query.
// A name that matches nothing yields database.ErrNotFound.
func QueryAvailability(ctx context.Context, dbCtx *database.Context, input AvailabilityInput) (*AvailabilityResult, error) {
	var filter database.AvailabilityFilter

	if input.Symbol != nil {
		id, err := ResolveSymbol(*input.Symbol)
		if err != nil {
			return nil, err
		}
		rec, err := lookupSymbol(ctx, services.NewSymbolService(dbCtx), id)
		if err != nil {
			return nil, err
		}
		filter.SymbolID = &rec.ID
	}

	if input.DllPath != "" {
		dll, err := database.NewDllRepository(dbCtx).FindByPath(ctx, input.DllPath)
		if err != nil {
			return nil, err
		}
		if dll == nil {
			return nil, fmt.Errorf("dll %q: %w", input.DllPath, database.ErrNotFound)
		}
		filter.DllID = &dll.ID
	}

	if input.OS != "" {
		os, err := findOperatingSystem(ctx, database.NewOperatingSystemRepository(dbCtx), input.OS)
		if err != nil {
			return nil, err
		}
		filter.OSID = &os.ID
	}

	pattern, err := database.PatternFor(filter)
	if err != nil {
		return nil, err
	}

	facts, err := services.NewAvailabilityService(dbCtx).Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &AvailabilityResult{Pattern: pattern.Structure(), Facts: facts}, nil
}

func findSymbol(ctx context.Context, svc *services.SymbolService, id identity.Identity) (*database.SymbolRecord, error) {
	switch v := id.(type) {
	case identity.Named:
		return svc.LookupByName(ctx, v.RawName)
	case identity.Ordinal:
		return svc.LookupByOrdinal(ctx, v.DLLName, v.Ordinal)
	default:
		return nil, fmt.Errorf("unsupported identity %T", id)
	}
}

func lookupSymbol(ctx context.Context, svc *services.SymbolService, id identity.Identity) (*database.SymbolRecord, error) {
	rec, err := findSymbol(ctx, svc, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("symbol %s: %w", id.DisplayName(), database.ErrNotFound)
	}
	return rec, nil
}
