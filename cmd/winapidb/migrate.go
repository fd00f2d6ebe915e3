package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/services"
)

func newMigrateCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade the database to the latest schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			ctx := cmd.Context()
			svc := services.NewLifecycleService(dbCtx)
			out := cmd.OutOrStdout()

			if check {
				blockers, err := svc.Blockers(ctx)
				if err != nil {
					return err
				}
				if len(blockers) == 0 {
					fmt.Fprintln(out, "No ordinal-only symbols block the upgrade")
					return nil
				}
				outputBlockers(out, blockers)
				return nil
			}

			result, err := svc.Upgrade(ctx)
			if err != nil {
				var precond *database.MigrationPreconditionError
				if errors.As(err, &precond) {
					outputBlockers(out, precond.Offending)
				}
				return err
			}

			if !result.Applied {
				fmt.Fprintf(out, "Schema is already at version %d\n", result.To)
				return nil
			}
			fmt.Fprintf(out, "Upgraded schema from version %d to %d\n", result.From, result.To)
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Only list the symbols that block the upgrade")

	return cmd
}

func outputBlockers(w io.Writer, blockers []database.OrdinalSymbol) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Ordinal-only symbols")
	t.AppendHeader(table.Row{"ID", "DLL", "Ordinal", "Friendly Name"})
	for _, b := range blockers {
		friendly := ""
		if b.FriendlyName != nil {
			friendly = *b.FriendlyName
		}
		t.AppendRow(table.Row{b.SymID, b.DllName, b.Ordinal, friendly})
	}
	t.Render()
}
