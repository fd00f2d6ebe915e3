package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/usecase"
)

func newSymbolCmd() *cobra.Command {
	var (
		format  string
		dllName string
		ordinal int64
	)

	cmd := &cobra.Command{
		Use:   "symbol [raw-name]",
		Short: "Show where a symbol is available",
		Long:  "Show a symbol and the DLLs exporting it on each operating system. Ordinal-only exports are selected with --dll and --ordinal.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			opts := usecase.SymbolOptions{Dll: dllName}
			if len(args) == 1 {
				opts.Name = args[0]
			}
			if cmd.Flags().Changed("ordinal") {
				opts.Ordinal = &ordinal
			}
			id, err := usecase.ResolveSymbol(opts)
			if err != nil {
				return err
			}

			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			report, err := usecase.NewSymbol(dbCtx).Report(cmd.Context(), id)
			if err != nil {
				return err
			}
			if report == nil {
				return fmt.Errorf("symbol %s: %w", id.DisplayName(), database.ErrNotFound)
			}

			if format == "json" {
				return outputJSON(cmd, report)
			}
			outputSymbolTable(cmd, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	cmd.Flags().StringVar(&dllName, "dll", "", "DLL file name of an ordinal-only export")
	cmd.Flags().Int64Var(&ordinal, "ordinal", 0, "Ordinal of an ordinal-only export")

	return cmd
}

func outputSymbolTable(cmd *cobra.Command, report *usecase.SymbolReport) {
	out := cmd.OutOrStdout()

	title := report.DisplayName
	if report.IsMetaFunc {
		title += " (meta-function)"
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Operating System", "DLL", "Ordinal"})

	// Operating system and ordinal columns are narrow; the DLL path gets the rest.
	pathWidth := nameWidth(24+7, 3)
	for _, group := range report.OperatingSystems {
		for i, dll := range group.Dlls {
			osName := ""
			if i == 0 {
				osName = group.DisplayName
			}
			ordinal := ""
			if dll.ObservedOrdinal != nil {
				ordinal = fmt.Sprint(*dll.ObservedOrdinal)
			}
			t.AppendRow(table.Row{osName, truncate(dll.Path, pathWidth), ordinal})
		}
	}
	t.Render()

	if len(report.OperatingSystems) == 0 {
		fmt.Fprintln(out, "Not available on any recorded operating system")
	}
}
