package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/winapi-history/winapidb/internal/application"
	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/services"
)

func newInitCmd() *cobra.Command {
	var legacy bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and seed operating systems",
		Long: "Create the database, register the configured operating systems and move it to the latest schema.\n" +
			"With --legacy the database stays on schema version 1 so that ordinal-only exports can be stored.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			ctx := cmd.Context()
			summary, err := application.SeedOperatingSystems(ctx, dbCtx, appConfig)
			if err != nil {
				return err
			}

			if !legacy {
				if _, err := services.NewLifecycleService(dbCtx).Upgrade(ctx); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s (schema version %d, %d operating systems added)\n",
				dbCtx.Path, dbCtx.Version(), len(summary.Created))
			return nil
		},
	}

	cmd.Flags().BoolVar(&legacy, "legacy", false, "Stay on schema version 1 (rich identity)")

	return cmd
}
