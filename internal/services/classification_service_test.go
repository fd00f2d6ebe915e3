package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/metafunc"
)

func TestClassificationServiceTagMetaFunction(t *testing.T) {
	ctx := context.Background()
	dbCtx := newMemoryDB(t)
	symbols := NewSymbolService(dbCtx)
	svc := NewClassificationService(dbCtx)

	_, err := symbols.InsertNamed(ctx, "DllMain", nil)
	require.NoError(t, err)
	_, err = symbols.InsertNamed(ctx, "CreateFileW", nil)
	require.NoError(t, err)

	require.NoError(t, svc.TagMetaFunction(ctx, "DllMain"))
	require.NoError(t, svc.TagMetaFunction(ctx, "DllMain"))

	rec, err := symbols.LookupByName(ctx, "DllMain")
	require.NoError(t, err)
	require.True(t, rec.IsMetaFunc)

	other, err := symbols.LookupByName(ctx, "CreateFileW")
	require.NoError(t, err)
	require.False(t, other.IsMetaFunc)

	err = svc.TagMetaFunction(ctx, "dllmain")
	require.ErrorIs(t, err, database.ErrNotFound)

	count, err := database.NewSymbolRepository(dbCtx).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestClassificationServiceApply(t *testing.T) {
	ctx := context.Background()
	dbCtx := newMemoryDB(t)
	symbols := NewSymbolService(dbCtx)
	svc := NewClassificationService(dbCtx)

	for _, name := range []string{"DllMain", "DllRegisterServer", "CreateFileW"} {
		_, err := symbols.InsertNamed(ctx, name, nil)
		require.NoError(t, err)
	}

	list, err := metafunc.Parse([]byte(`
meta_functions:
  - name: DllMain
    category: module_entry
  - name: DllRegisterServer
    category: com_server
  - name: ServiceMain
    category: service_entry
`))
	require.NoError(t, err)

	report, err := svc.Apply(ctx, list)
	require.NoError(t, err)
	require.Equal(t, []string{"DllMain", "DllRegisterServer"}, report.Tagged)
	require.Equal(t, []string{"ServiceMain"}, report.Missing)

	again, err := svc.Apply(ctx, list)
	require.NoError(t, err)
	require.Equal(t, report, again)

	rec, err := symbols.LookupByName(ctx, "CreateFileW")
	require.NoError(t, err)
	require.False(t, rec.IsMetaFunc)
}

func TestClassificationServiceSurvivesUpgrade(t *testing.T) {
	ctx := context.Background()
	dbCtx := newMemoryDB(t)
	symbols := NewSymbolService(dbCtx)

	_, err := symbols.InsertNamed(ctx, "DllMain", nil)
	require.NoError(t, err)
	require.NoError(t, NewClassificationService(dbCtx).TagMetaFunction(ctx, "DllMain"))

	upgrade(t, dbCtx)

	rec, err := symbols.LookupByName(ctx, "DllMain")
	require.NoError(t, err)
	require.True(t, rec.IsMetaFunc)
}
