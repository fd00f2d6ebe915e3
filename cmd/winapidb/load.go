package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/winapi-history/winapidb/internal/application"
	"github.com/winapi-history/winapidb/internal/database"
)

func newLoadCmd() *cobra.Command {
	var (
		upgrade bool
		tagMeta bool
	)

	cmd := &cobra.Command{
		Use:   "load <export-list>",
		Short: "Load an export list into the database",
		Long: "Load an export list in one transaction. Each line holds a JSON array with the DLL path\n" +
			"(first component = operating system), the ordinal and the export name, separated by tabs.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			input := application.LoadInput{Path: args[0], Upgrade: upgrade}
			if tagMeta {
				list, err := application.LoadMetaFunctions(appConfig)
				if err != nil {
					return err
				}
				input.MetaFunctions = &list
			}

			result, err := application.LoadExportList(cmd.Context(), dbCtx, input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Upgrade.Applied {
				fmt.Fprintf(out, "Upgraded schema from version %d to %d\n", result.Upgrade.From, result.Upgrade.To)
			}
			s := result.Ingest
			fmt.Fprintf(out, "Loaded %d lines: %d facts, %d duplicates, %d ordinal-only skipped\n",
				s.Lines, s.Facts, s.Duplicates, s.SkippedOrdinal)
			fmt.Fprintf(out, "New rows: %d operating systems, %d DLLs, %d symbols\n",
				s.OperatingSystems, s.Dlls, s.Symbols)
			if result.Tagging != nil {
				fmt.Fprintf(out, "Tagged %d meta-functions\n", len(result.Tagging.Tagged))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&upgrade, "upgrade", false, "Upgrade the schema to the latest version before loading")
	cmd.Flags().BoolVar(&tagMeta, "tag-meta", true, "Tag meta-functions from the allow-list after loading")

	return cmd
}
