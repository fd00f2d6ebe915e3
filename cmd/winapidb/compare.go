package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/usecase"
)

func newCompareCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "compare <old-os> <new-os>",
		Short: "List DLLs and symbols added or removed between two operating systems",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			cmp, err := usecase.CompareOperatingSystems(cmd.Context(), dbCtx, args[0], args[1])
			if err != nil {
				return err
			}

			if format == "json" {
				return outputJSON(cmd, cmp)
			}
			outputComparisonTable(cmd, cmp)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

func outputComparisonTable(cmd *cobra.Command, cmp *usecase.Comparison) {
	width := nameWidth(8, 2)

	render := func(title string, added, removed []string) {
		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.SetTitle(title)
		t.AppendHeader(table.Row{"Change", "Name"})
		for _, name := range added {
			t.AppendRow(table.Row{"+", truncate(name, width)})
		}
		for _, name := range removed {
			t.AppendRow(table.Row{"-", truncate(name, width)})
		}
		t.Render()
	}

	render("DLLs: "+cmp.OldName+" -> "+cmp.NewName, cmp.AddedDlls, cmp.RemovedDlls)
	render("Symbols: "+cmp.OldName+" -> "+cmp.NewName, displayNames(cmp.AddedSymbols), displayNames(cmp.RemovedSymbols))
}

func displayNames(lines []usecase.SymbolLine) []string {
	names := make([]string, 0, len(lines))
	for _, l := range lines {
		names = append(names, l.DisplayName)
	}
	return names
}
