package application

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/winapi-history/winapidb/internal/config"
	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/services"
)

const exportList = `["win7\\windows\\system32\\kernel32.dll"]	1	DllMain
["win7\\windows\\system32\\kernel32.dll"]	2	CreateFileW
["win7\\windows\\system32\\ws2_32.dll"]	115	
`

func newMemoryDB(t *testing.T) *database.Context {
	t.Helper()

	dbCtx, err := database.CreateDatabase(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDatabase(dbCtx) })
	return dbCtx
}

func writeList(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "exports.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadExportListTagsMetaFunctions(t *testing.T) {
	ctx := context.Background()
	dbCtx := newMemoryDB(t)

	list, err := LoadMetaFunctions(config.Default())
	require.NoError(t, err)

	result, err := LoadExportList(ctx, dbCtx, LoadInput{Path: writeList(t, exportList), MetaFunctions: &list})
	require.NoError(t, err)
	require.False(t, result.Upgrade.Applied)
	require.Equal(t, 3, result.Ingest.Facts)
	require.NotNil(t, result.Tagging)
	require.Equal(t, []string{"DllMain"}, result.Tagging.Tagged)

	rec, err := services.NewSymbolService(dbCtx).LookupByName(ctx, "DllMain")
	require.NoError(t, err)
	require.True(t, rec.IsMetaFunc)
}

func TestLoadExportListWithUpgrade(t *testing.T) {
	ctx := context.Background()
	dbCtx := newMemoryDB(t)

	result, err := LoadExportList(ctx, dbCtx, LoadInput{Path: writeList(t, exportList), Upgrade: true})
	require.NoError(t, err)
	require.True(t, result.Upgrade.Applied)
	require.Equal(t, 2, result.Ingest.Facts)
	require.Equal(t, 1, result.Ingest.SkippedOrdinal)
	require.Nil(t, result.Tagging)
}

func TestLoadExportListUpgradeBlocked(t *testing.T) {
	ctx := context.Background()
	dbCtx := newMemoryDB(t)

	_, err := LoadExportList(ctx, dbCtx, LoadInput{Path: writeList(t, exportList)})
	require.NoError(t, err)

	_, err = LoadExportList(ctx, dbCtx, LoadInput{Path: writeList(t, exportList), Upgrade: true})
	require.ErrorIs(t, err, database.ErrMigrationPrecondition)
}

func TestSeedOperatingSystems(t *testing.T) {
	ctx := context.Background()
	dbCtx := newMemoryDB(t)

	cfg := config.Default()
	summary, err := SeedOperatingSystems(ctx, dbCtx, cfg)
	require.NoError(t, err)
	require.Len(t, summary.Created, len(cfg.OperatingSystems))

	again, err := SeedOperatingSystems(ctx, dbCtx, cfg)
	require.NoError(t, err)
	require.Empty(t, again.Created)
	require.Len(t, again.Existing, len(cfg.OperatingSystems))

	win7, err := services.NewCatalogService(dbCtx).LookupOperatingSystem(ctx, "win7")
	require.NoError(t, err)
	require.Equal(t, "Windows 7", win7.DisplayName())
}
