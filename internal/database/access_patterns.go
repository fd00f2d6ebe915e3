package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Facet is one column of the availability relation.
type Facet uint8

const (
	FacetSymbol Facet = 1 << iota
	FacetDll
	FacetOS
)

// ErrEmptyFilter is returned for an availability filter that fixes no facet.
var ErrEmptyFilter = errors.New("database: availability filter must fix at least one of symbol, dll, os")

func (f Facet) String() string {
	var parts []string
	if f&FacetSymbol != 0 {
		parts = append(parts, "symbol")
	}
	if f&FacetDll != 0 {
		parts = append(parts, "dll")
	}
	if f&FacetOS != 0 {
		parts = append(parts, "os")
	}
	if len(parts) == 0 {
		return "none"
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// AvailabilityFilter fixes any non-empty subset of the three facets.
type AvailabilityFilter struct {
	SymbolID *int64
	DllID    *int64
	OSID     *int64
}

// Facets reports which facets the filter fixes.
func (f AvailabilityFilter) Facets() Facet {
	var facets Facet
	if f.SymbolID != nil {
		facets |= FacetSymbol
	}
	if f.DllID != nil {
		facets |= FacetDll
	}
	if f.OSID != nil {
		facets |= FacetOS
	}
	return facets
}

// AccessPattern names the structure that serves one combination of fixed
// facets. An empty Index means the (sym_id, dll_id, os_id) primary key.
type AccessPattern struct {
	Facets Facet
	Index  string
}

// Structure is the human-readable name of the serving structure.
func (p AccessPattern) Structure() string {
	if p.Index == "" {
		return "PRIMARY KEY (sym_id, dll_id, os_id)"
	}
	return p.Index
}

// AccessPatterns maps every non-empty facet subset to the structure that
// answers it without scanning symbol_dll_os.
var AccessPatterns = map[Facet]AccessPattern{
	FacetSymbol:                      {Facets: FacetSymbol},
	FacetSymbol | FacetDll:           {Facets: FacetSymbol | FacetDll},
	FacetSymbol | FacetDll | FacetOS: {Facets: FacetSymbol | FacetDll | FacetOS},
	FacetDll:                         {Facets: FacetDll, Index: "idx_symbol_dll_os_dll_os"},
	FacetDll | FacetOS:               {Facets: FacetDll | FacetOS, Index: "idx_symbol_dll_os_dll_os"},
	FacetSymbol | FacetOS:            {Facets: FacetSymbol | FacetOS, Index: "idx_symbol_dll_os_sym_os"},
	FacetOS:                          {Facets: FacetOS, Index: "idx_symbol_dll_os_os"},
}

// PatternFor returns the access pattern serving filter.
func PatternFor(filter AvailabilityFilter) (AccessPattern, error) {
	facets := filter.Facets()
	if facets == 0 {
		return AccessPattern{}, ErrEmptyFilter
	}
	pattern, ok := AccessPatterns[facets]
	if !ok {
		return AccessPattern{}, fmt.Errorf("no access pattern for %s", facets)
	}
	return pattern, nil
}

// AvailabilitySQL renders the query for filter and its arguments.
func AvailabilitySQL(filter AvailabilityFilter, layoutVersion int64) (string, []any, error) {
	pattern, err := PatternFor(filter)
	if err != nil {
		return "", nil, err
	}

	ordinalColumn := "ordinal"
	if layoutVersion >= SchemaVersionSimplified {
		ordinalColumn = "NULL AS ordinal"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT sym_id, dll_id, os_id, %s FROM symbol_dll_os", ordinalColumn)
	if pattern.Index != "" {
		fmt.Fprintf(&b, " INDEXED BY %s", pattern.Index)
	}

	var conds []string
	var args []any
	if filter.SymbolID != nil {
		conds = append(conds, "sym_id = ?")
		args = append(args, *filter.SymbolID)
	}
	if filter.DllID != nil {
		conds = append(conds, "dll_id = ?")
		args = append(args, *filter.DllID)
	}
	if filter.OSID != nil {
		conds = append(conds, "os_id = ?")
		args = append(args, *filter.OSID)
	}
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(conds, " AND "))
	b.WriteString(" ORDER BY sym_id, dll_id, os_id")

	return b.String(), args, nil
}

// QueryAvailability returns every availability row matching filter.
func QueryAvailability(ctx context.Context, dbCtx *Context, filter AvailabilityFilter) ([]AvailabilityRecord, error) {
	if dbCtx == nil || dbCtx.X == nil {
		return nil, fmt.Errorf("availability query: missing database context")
	}

	query, args, err := AvailabilitySQL(filter, dbCtx.Version())
	if err != nil {
		return nil, err
	}

	records := []AvailabilityRecord{}
	if err := dbCtx.X.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("availability query %s: %w", filter.Facets(), err)
	}
	return records, nil
}
