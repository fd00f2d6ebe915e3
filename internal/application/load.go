package application

import (
	"context"

	"github.com/winapi-history/winapidb/internal/config"
	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/loader"
	"github.com/winapi-history/winapidb/internal/metafunc"
	"github.com/winapi-history/winapidb/internal/services"
)

// LoadInput aggregates what a load run needs.
type LoadInput struct {
	Path string
	// Upgrade migrates the schema to the latest version before loading.
	Upgrade bool
	// MetaFunctions, when set, is replayed after the list is loaded.
	MetaFunctions *metafunc.AllowList
}

// LoadResult reports every step of a load run.
type LoadResult struct {
	Upgrade database.UpgradeResult
	Ingest  services.IngestSummary
	Tagging *services.ApplyReport
}

// LoadExportList optionally upgrades the schema, ingests the export list in
// one transaction and then tags meta-functions.
func LoadExportList(ctx context.Context, dbCtx *database.Context, input LoadInput) (*LoadResult, error) {
	result := &LoadResult{}

	if input.Upgrade {
		upgrade, err := services.NewLifecycleService(dbCtx).Upgrade(ctx)
		if err != nil {
			return nil, err
		}
		result.Upgrade = upgrade
	}

	summary, err := loader.New(dbCtx).LoadFile(ctx, input.Path)
	if err != nil {
		return nil, err
	}
	result.Ingest = summary

	if input.MetaFunctions != nil {
		report, err := services.NewClassificationService(dbCtx).Apply(ctx, *input.MetaFunctions)
		if err != nil {
			return nil, err
		}
		result.Tagging = &report
	}

	return result, nil
}

// SeedOperatingSystems registers the operating systems listed in cfg.
func SeedOperatingSystems(ctx context.Context, dbCtx *database.Context, cfg *config.Config) (services.SeedSummary, error) {
	seeds := make([]services.OperatingSystemSeed, 0, len(cfg.OperatingSystems))
	for _, os := range cfg.OperatingSystems {
		seed := services.OperatingSystemSeed{ShortName: os.ShortName}
		if os.LongName != "" {
			longName := os.LongName
			seed.LongName = &longName
		}
		seeds = append(seeds, seed)
	}
	return services.NewCatalogService(dbCtx).SeedOperatingSystems(ctx, seeds)
}

// LoadMetaFunctions returns the allow-list named by cfg, or the embedded
// default when cfg names none.
func LoadMetaFunctions(cfg *config.Config) (metafunc.AllowList, error) {
	return metafunc.Load(cfg.MetaFunctions.AllowList)
}
