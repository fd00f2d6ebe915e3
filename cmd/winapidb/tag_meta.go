package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/metafunc"
	"github.com/winapi-history/winapidb/internal/services"
)

func newTagMetaCmd() *cobra.Command {
	var listPath string

	cmd := &cobra.Command{
		Use:   "tag-meta [raw-name...]",
		Short: "Mark symbols as meta-functions",
		Long: "Mark the named symbols as meta-functions. Without arguments the allow-list is replayed:\n" +
			"the file given by --list, the configured meta_functions.allow_list, or the built-in list.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			ctx := cmd.Context()
			svc := services.NewClassificationService(dbCtx)
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				for _, name := range args {
					if err := svc.TagMetaFunction(ctx, name); err != nil {
						return err
					}
					fmt.Fprintf(out, "Tagged %s\n", name)
				}
				return nil
			}

			path := listPath
			if path == "" {
				path = appConfig.MetaFunctions.AllowList
			}
			list, err := metafunc.Load(path)
			if err != nil {
				return err
			}

			report, err := svc.Apply(ctx, list)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Tagged %d meta-functions\n", len(report.Tagged))
			if len(report.Missing) > 0 {
				fmt.Fprintf(out, "Not in database: %s\n", strings.Join(report.Missing, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listPath, "list", "", "YAML allow-list replacing the configured one")

	return cmd
}
