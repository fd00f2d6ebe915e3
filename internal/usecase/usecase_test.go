package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/identity"
	"github.com/winapi-history/winapidb/internal/services"
)

func ptr[T any](v T) *T {
	return &v
}

// seed loads two operating systems. DllMain and ExitProcess exist on both,
// CreateFileW moves from kernel32 to kernelbase, GetTickCount64 and
// kernelbase.dll are new on win7, and ws2_32.dll#115 disappears.
func seed(t *testing.T) *database.Context {
	t.Helper()
	ctx := context.Background()

	dbCtx, err := database.CreateDatabase(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDatabase(dbCtx) })

	batch, err := services.NewIngestService(dbCtx).Begin(ctx)
	require.NoError(t, err)

	add := func(os, dll, name string, ordinal int64) {
		obs := services.Observation{OSShortName: os, DllPath: dll, DllFileName: dll, Ordinal: &ordinal}
		if name != "" {
			obs.RawName = ptr(name)
		}
		require.NoError(t, batch.Add(ctx, obs))
	}

	add("winxp", "kernel32.dll", "DllMain", 1)
	add("winxp", "kernel32.dll", "ExitProcess", 2)
	add("winxp", "kernel32.dll", "CreateFileW", 3)
	add("winxp", "ws2_32.dll", "", 115)
	add("win7", "kernel32.dll", "DllMain", 1)
	add("win7", "kernel32.dll", "ExitProcess", 4)
	add("win7", "kernelbase.dll", "CreateFileW", 5)
	add("win7", "kernel32.dll", "GetTickCount64", 6)
	add("win7", "kernelbase.dll", "DllMain", 7)

	_, err = batch.Commit()
	require.NoError(t, err)
	require.NoError(t, services.NewClassificationService(dbCtx).TagMetaFunction(ctx, "DllMain"))

	return dbCtx
}

func TestResolveSymbol(t *testing.T) {
	id, err := ResolveSymbol(SymbolOptions{Name: "CreateFileW"})
	require.NoError(t, err)
	require.Equal(t, identity.Named{RawName: "CreateFileW"}, id)

	id, err = ResolveSymbol(SymbolOptions{Dll: "ws2_32.dll", Ordinal: ptr(int64(115))})
	require.NoError(t, err)
	require.Equal(t, identity.Ordinal{DLLName: "ws2_32.dll", Ordinal: 115}, id)

	for _, opts := range []SymbolOptions{
		{},
		{Name: "CreateFileW", Dll: "kernel32.dll"},
		{Dll: "ws2_32.dll"},
		{Ordinal: ptr(int64(1))},
	} {
		_, err := ResolveSymbol(opts)
		require.Error(t, err, "%+v", opts)
	}

	_, err = ResolveSymbol(SymbolOptions{Dll: "ws2_32.dll", Ordinal: ptr(int64(-1))})
	require.ErrorIs(t, err, identity.ErrInvalid)
}

func TestSymbolReport(t *testing.T) {
	ctx := context.Background()
	dbCtx := seed(t)

	report, err := NewSymbol(dbCtx).Report(ctx, identity.Named{RawName: "DllMain"})
	require.NoError(t, err)
	require.NotNil(t, report)
	require.Equal(t, "DllMain", report.DisplayName)
	require.True(t, report.IsMetaFunc)
	require.Len(t, report.OperatingSystems, 2)

	xp := report.OperatingSystems[0]
	require.Equal(t, "winxp", xp.ShortName)
	require.Equal(t, []DllPlacement{{ID: xp.Dlls[0].ID, Path: "kernel32.dll", ObservedOrdinal: ptr(int64(1))}}, xp.Dlls)

	w7 := report.OperatingSystems[1]
	require.Equal(t, "win7", w7.ShortName)
	require.Len(t, w7.Dlls, 2)
	require.Equal(t, "kernel32.dll", w7.Dlls[0].Path)
	require.Equal(t, "kernelbase.dll", w7.Dlls[1].Path)

	ord, err := NewSymbol(dbCtx).Report(ctx, identity.Ordinal{DLLName: "ws2_32.dll", Ordinal: 115})
	require.NoError(t, err)
	require.Equal(t, "ws2_32.dll#115", ord.DisplayName)
	require.Nil(t, ord.RawName)

	missing, err := NewSymbol(dbCtx).Report(ctx, identity.Named{RawName: "NoSuchExport"})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestCompareOperatingSystems(t *testing.T) {
	ctx := context.Background()
	dbCtx := seed(t)

	cmp, err := CompareOperatingSystems(ctx, dbCtx, "winxp", "win7")
	require.NoError(t, err)
	require.Equal(t, []string{"kernelbase.dll"}, cmp.AddedDlls)
	require.Equal(t, []string{"ws2_32.dll"}, cmp.RemovedDlls)

	names := func(lines []SymbolLine) []string {
		out := []string{}
		for _, l := range lines {
			out = append(out, l.DisplayName)
		}
		return out
	}
	require.Equal(t, []string{"GetTickCount64"}, names(cmp.AddedSymbols))
	require.Equal(t, []string{"ws2_32.dll#115"}, names(cmp.RemovedSymbols))

	_, err = CompareOperatingSystems(ctx, dbCtx, "winxp", "win95")
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestCompareOperatingSystemsAfterUpgrade(t *testing.T) {
	ctx := context.Background()
	dbCtx := seed(t)

	ord, err := database.NewSymbolRepository(dbCtx).FindByDllOrdinal(ctx, "ws2_32.dll", 115)
	require.NoError(t, err)
	avail := services.NewAvailabilityService(dbCtx)
	xp, err := services.NewCatalogService(dbCtx).LookupOperatingSystem(ctx, "winxp")
	require.NoError(t, err)
	ws2, err := services.NewCatalogService(dbCtx).LookupDll(ctx, "ws2_32.dll")
	require.NoError(t, err)
	_, err = avail.Retract(ctx, ord.ID, ws2.ID, xp.ID)
	require.NoError(t, err)
	_, err = services.NewSymbolService(dbCtx).Delete(ctx, ord.ID)
	require.NoError(t, err)

	_, err = services.NewLifecycleService(dbCtx).Upgrade(ctx)
	require.NoError(t, err)

	cmp, err := CompareOperatingSystems(ctx, dbCtx, "winxp", "win7")
	require.NoError(t, err)
	require.Equal(t, []string{"kernelbase.dll"}, cmp.AddedDlls)
	require.Empty(t, cmp.RemovedDlls)
	require.Len(t, cmp.AddedSymbols, 1)
	require.Empty(t, cmp.RemovedSymbols)
}

func TestQueryAvailability(t *testing.T) {
	ctx := context.Background()
	dbCtx := seed(t)

	res, err := QueryAvailability(ctx, dbCtx, AvailabilityInput{Symbol: &SymbolOptions{Name: "CreateFileW"}})
	require.NoError(t, err)
	require.Equal(t, "PRIMARY KEY (sym_id, dll_id, os_id)", res.Pattern)
	require.Len(t, res.Facts, 2)

	res, err = QueryAvailability(ctx, dbCtx, AvailabilityInput{DllPath: "kernelbase.dll", OS: "win7"})
	require.NoError(t, err)
	require.Equal(t, "idx_symbol_dll_os_dll_os", res.Pattern)
	require.Len(t, res.Facts, 2)

	res, err = QueryAvailability(ctx, dbCtx, AvailabilityInput{OS: "winxp"})
	require.NoError(t, err)
	require.Equal(t, "idx_symbol_dll_os_os", res.Pattern)
	require.Len(t, res.Facts, 4)

	_, err = QueryAvailability(ctx, dbCtx, AvailabilityInput{})
	require.ErrorIs(t, err, database.ErrEmptyFilter)

	_, err = QueryAvailability(ctx, dbCtx, AvailabilityInput{DllPath: "nope.dll"})
	require.ErrorIs(t, err, database.ErrNotFound)
}
