package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/services"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the program and schema versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			ver, err := services.NewLifecycleService(dbCtx).CurrentVersion(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "winapidb %s\n", version)
			fmt.Fprintf(out, "database: %s\n", dbCtx.Path)
			fmt.Fprintf(out, "schema version: %d (latest %d)\n", ver, database.SchemaVersionLatest)
			return nil
		},
	}
}
