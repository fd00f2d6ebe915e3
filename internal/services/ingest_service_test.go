package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/winapi-history/winapidb/internal/database"
)

func named(os, dll, name string, ordinal int64) Observation {
	return Observation{
		OSShortName: os,
		DllPath:     dll,
		DllFileName: dll,
		Ordinal:     ptr(ordinal),
		RawName:     ptr(name),
	}
}

func ordinalOnly(os, dll string, ordinal int64) Observation {
	return Observation{
		OSShortName: os,
		DllPath:     `windows\system32\` + dll,
		DllFileName: dll,
		Ordinal:     ptr(ordinal),
	}
}

func TestIngestBatchCommit(t *testing.T) {
	ctx := context.Background()
	dbCtx := newMemoryDB(t)

	batch, err := NewIngestService(dbCtx).Begin(ctx)
	require.NoError(t, err)

	for _, obs := range []Observation{
		named("winxp", `windows\system32\kernel32.dll`, "CreateFileW", 80),
		named("win7", `windows\system32\kernel32.dll`, "CreateFileW", 85),
		named("win7", `windows\system32\kernel32.dll`, "CreateFileW", 85),
		named("win7", `windows\system32\kernelbase.dll`, "CreateFileW", 60),
		ordinalOnly("winxp", "ws2_32.dll", 115),
	} {
		require.NoError(t, batch.Add(ctx, obs))
	}

	summary, err := batch.Commit()
	require.NoError(t, err)
	require.Equal(t, IngestSummary{
		Lines:            5,
		Facts:            4,
		Duplicates:       1,
		OperatingSystems: 2,
		Dlls:             3,
		Symbols:          2,
	}, summary)

	sym, err := NewSymbolService(dbCtx).LookupByOrdinal(ctx, "ws2_32.dll", 115)
	require.NoError(t, err)
	require.NotNil(t, sym)

	create, err := NewSymbolService(dbCtx).LookupByName(ctx, "CreateFileW")
	require.NoError(t, err)
	rows, err := NewAvailabilityService(dbCtx).Query(ctx, database.AvailabilityFilter{SymbolID: &create.ID})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	_, err = batch.Commit()
	require.Error(t, err)
	require.NoError(t, batch.Rollback())
}

func TestIngestBatchReusesExistingRows(t *testing.T) {
	ctx := context.Background()
	dbCtx := newMemoryDB(t)
	fx := newFixture(t, dbCtx)

	batch, err := NewIngestService(dbCtx).Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, batch.Add(ctx, named("win10", `windows\system32\kernel32.dll`, "CreateFileW", 1)))
	summary, err := batch.Commit()
	require.NoError(t, err)
	require.Equal(t, IngestSummary{Lines: 1, Facts: 1}, summary)

	rows, err := NewAvailabilityService(dbCtx).Query(ctx, database.AvailabilityFilter{SymbolID: &fx.symID, DllID: &fx.dllID, OSID: &fx.osID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestIngestBatchRollback(t *testing.T) {
	ctx := context.Background()
	dbCtx := newMemoryDB(t)

	batch, err := NewIngestService(dbCtx).Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, batch.Add(ctx, named("winxp", `windows\system32\kernel32.dll`, "CreateFileW", 80)))

	err = batch.Add(ctx, Observation{OSShortName: "winxp", DllPath: "a.dll", DllFileName: "a.dll"})
	require.ErrorIs(t, err, ErrEmptyObservation)

	require.NoError(t, batch.Rollback())
	require.NoError(t, batch.Rollback())

	count, err := database.NewSymbolRepository(dbCtx).Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	oses, err := NewCatalogService(dbCtx).ListOperatingSystems(ctx)
	require.NoError(t, err)
	require.Empty(t, oses)
}

func TestIngestBatchSkipsOrdinalsAfterUpgrade(t *testing.T) {
	ctx := context.Background()
	dbCtx := newMemoryDB(t)
	upgrade(t, dbCtx)

	batch, err := NewIngestService(dbCtx).Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, batch.Add(ctx, named("win11", `windows\system32\kernel32.dll`, "CreateFileW", 80)))
	require.NoError(t, batch.Add(ctx, ordinalOnly("win11", "ws2_32.dll", 115)))

	summary, err := batch.Commit()
	require.NoError(t, err)
	require.Equal(t, 1, summary.Facts)
	require.Equal(t, 1, summary.SkippedOrdinal)
	require.Equal(t, 1, summary.Dlls)
}
