package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/winapi-history/winapidb/internal/application"
	"github.com/winapi-history/winapidb/internal/database"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Register the operating systems listed in the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			summary, err := application.SeedOperatingSystems(cmd.Context(), dbCtx, appConfig)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summary.Created) == 0 {
				fmt.Fprintln(out, "All operating systems are already registered")
				return nil
			}
			fmt.Fprintf(out, "Registered: %s\n", strings.Join(summary.Created, ", "))
			return nil
		},
	}
}
