package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()

	dbCtx, err := database.CreateDatabase(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDatabase(dbCtx) })

	batch, err := services.NewIngestService(dbCtx).Begin(ctx)
	require.NoError(t, err)
	for _, os := range []string{"winxp", "win7"} {
		name := "CreateFileW"
		require.NoError(t, batch.Add(ctx, services.Observation{OSShortName: os, DllPath: "kernel32.dll", DllFileName: "kernel32.dll", RawName: &name}))
	}
	name := "GetTickCount64"
	require.NoError(t, batch.Add(ctx, services.Observation{OSShortName: "win7", DllPath: "kernel32.dll", DllFileName: "kernel32.dll", RawName: &name}))
	_, err = batch.Commit()
	require.NoError(t, err)

	return NewServer(dbCtx, "test")
}

func TestHandleSymbol(t *testing.T) {
	s := newTestServer(t)
	name := "CreateFileW"

	_, out, err := s.handleSymbol(context.Background(), nil, SymbolInput{Name: &name})
	require.NoError(t, err)
	require.True(t, out.Found)
	require.Len(t, out.Symbol.OperatingSystems, 2)

	missing := "NoSuchExport"
	_, out, err = s.handleSymbol(context.Background(), nil, SymbolInput{Name: &missing})
	require.NoError(t, err)
	require.False(t, out.Found)

	_, _, err = s.handleSymbol(context.Background(), nil, SymbolInput{})
	require.Error(t, err)
}

func TestHandleAvailability(t *testing.T) {
	s := newTestServer(t)
	os := "win7"

	_, out, err := s.handleAvailability(context.Background(), nil, AvailabilityInput{OS: &os})
	require.NoError(t, err)
	require.Equal(t, "idx_symbol_dll_os_os", out.Pattern)
	require.Len(t, out.Facts, 2)

	_, _, err = s.handleAvailability(context.Background(), nil, AvailabilityInput{})
	require.ErrorIs(t, err, database.ErrEmptyFilter)
}

func TestHandleCompare(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleCompare(context.Background(), nil, CompareInput{Old: "winxp", New: "win7"})
	require.NoError(t, err)
	require.Len(t, out.Comparison.AddedSymbols, 1)
	require.Equal(t, "GetTickCount64", out.Comparison.AddedSymbols[0].DisplayName)
	require.Empty(t, out.Comparison.RemovedSymbols)

	_, _, err = s.handleCompare(context.Background(), nil, CompareInput{Old: "winxp", New: "win95"})
	require.ErrorIs(t, err, database.ErrNotFound)
}
