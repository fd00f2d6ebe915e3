package database

import (
	"context"
	"fmt"
)

const symbolSummaryColumnsV1 = `sym.sym_id, sym.raw_name, sym.dll_name, sym.ordinal, sym.friendly_name, sym.is_meta_func`

const symbolSummaryColumnsV2 = `sym.sym_id, sym.raw_name, NULL AS dll_name, NULL AS ordinal, sym.friendly_name, sym.is_meta_func`

// ReportQuery answers the read-only questions asked by reports: where a
// symbol lives, what an operating system ships and how two releases differ.
type ReportQuery struct {
	ctx *Context
}

func NewReportQuery(dbCtx *Context) *ReportQuery {
	return &ReportQuery{ctx: dbCtx}
}

func (q *ReportQuery) symbolColumns() string {
	if q.ctx.Version() >= SchemaVersionSimplified {
		return symbolSummaryColumnsV2
	}
	return symbolSummaryColumnsV1
}

func (q *ReportQuery) observedOrdinal() string {
	if q.ctx.Version() >= SchemaVersionSimplified {
		return "NULL AS ordinal"
	}
	return "sdo.ordinal"
}

func (q *ReportQuery) check() error {
	if q.ctx == nil || q.ctx.X == nil {
		return fmt.Errorf("report query: missing database context")
	}
	return nil
}

// PlacementsForSymbol lists every (dll, os) pair the symbol is available in,
// ordered by operating system then DLL path.
func (q *ReportQuery) PlacementsForSymbol(ctx context.Context, symID int64) ([]SymbolPlacement, error) {
	if err := q.check(); err != nil {
		return nil, err
	}

	query := `
		SELECT dll.dll_id, dll.path, os.os_id, os.short_name, os.long_name, ` + q.observedOrdinal() + `
		FROM symbol_dll_os sdo
			INNER JOIN dlls dll ON dll.dll_id = sdo.dll_id
			INNER JOIN operating_systems os ON os.os_id = sdo.os_id
		WHERE sdo.sym_id = ?
		ORDER BY os.os_id, dll.path`

	placements := []SymbolPlacement{}
	if err := q.ctx.X.SelectContext(ctx, &placements, query, symID); err != nil {
		return nil, fmt.Errorf("placements for symbol %d: %w", symID, err)
	}
	return placements, nil
}

// DllsForOperatingSystem lists the DLLs exporting at least one symbol on
// the operating system.
func (q *ReportQuery) DllsForOperatingSystem(ctx context.Context, osID int64) ([]DllRecord, error) {
	if err := q.check(); err != nil {
		return nil, err
	}

	dllColumns := "dll.dll_id, dll.path, dll.secondary_platform"
	if q.ctx.Version() >= SchemaVersionSimplified {
		dllColumns = "dll.dll_id, dll.path, 0 AS secondary_platform"
	}

	query := `
		SELECT ` + dllColumns + `
		FROM dlls dll
		WHERE EXISTS (
			SELECT 1 FROM symbol_dll_os sdo
			WHERE sdo.dll_id = dll.dll_id AND sdo.os_id = ?
		)
		ORDER BY dll.path`

	dlls := []DllRecord{}
	if err := q.ctx.X.SelectContext(ctx, &dlls, query, osID); err != nil {
		return nil, fmt.Errorf("dlls for operating system %d: %w", osID, err)
	}
	return dlls, nil
}

// SymbolsForOsDll lists the symbols a DLL exports on an operating system.
func (q *ReportQuery) SymbolsForOsDll(ctx context.Context, osID, dllID int64) ([]SymbolSummary, error) {
	if err := q.check(); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + q.symbolColumns() + `
		FROM symbol_dll_os sdo
			INNER JOIN symbols sym ON sym.sym_id = sdo.sym_id
		WHERE sdo.dll_id = ? AND sdo.os_id = ?
		ORDER BY sym.raw_name IS NULL, sym.raw_name, sym.sym_id`

	symbols := []SymbolSummary{}
	if err := q.ctx.X.SelectContext(ctx, &symbols, query, dllID, osID); err != nil {
		return nil, fmt.Errorf("symbols for dll %d on os %d: %w", dllID, osID, err)
	}
	return symbols, nil
}

// DllPathsOnlyIn lists the paths of DLLs present on presentOS and absent
// from absentOS.
func (q *ReportQuery) DllPathsOnlyIn(ctx context.Context, presentOS, absentOS int64) ([]string, error) {
	if err := q.check(); err != nil {
		return nil, err
	}

	const query = `
		SELECT dll.path
		FROM dlls dll
		WHERE EXISTS (
			SELECT 1 FROM symbol_dll_os y_sdo
			WHERE y_sdo.os_id = ? AND y_sdo.dll_id = dll.dll_id
		)
		AND NOT EXISTS (
			SELECT 1 FROM symbol_dll_os n_sdo
			WHERE n_sdo.os_id = ? AND n_sdo.dll_id = dll.dll_id
		)
		ORDER BY dll.path`

	paths := []string{}
	if err := q.ctx.X.SelectContext(ctx, &paths, query, presentOS, absentOS); err != nil {
		return nil, fmt.Errorf("dll difference %d - %d: %w", presentOS, absentOS, err)
	}
	return paths, nil
}

// SymbolsOnlyIn lists the symbols available on presentOS and not on
// absentOS. Meta-functions are left out.
func (q *ReportQuery) SymbolsOnlyIn(ctx context.Context, presentOS, absentOS int64) ([]SymbolSummary, error) {
	if err := q.check(); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + q.symbolColumns() + `
		FROM symbols sym
		WHERE sym.is_meta_func = 0
		AND EXISTS (
			SELECT 1 FROM symbol_dll_os y_sdo
			WHERE y_sdo.os_id = ? AND y_sdo.sym_id = sym.sym_id
		)
		AND NOT EXISTS (
			SELECT 1 FROM symbol_dll_os n_sdo
			WHERE n_sdo.os_id = ? AND n_sdo.sym_id = sym.sym_id
		)
		ORDER BY sym.raw_name IS NULL, sym.raw_name, sym.friendly_name, sym.sym_id`

	symbols := []SymbolSummary{}
	if err := q.ctx.X.SelectContext(ctx, &symbols, query, presentOS, absentOS); err != nil {
		return nil, fmt.Errorf("symbol difference %d - %d: %w", presentOS, absentOS, err)
	}
	return symbols, nil
}
