package main

import (
	"github.com/spf13/cobra"

	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long:  "Start the Model Context Protocol server answering symbol lookups on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			return mcp.NewServer(dbCtx, version).Run(cmd.Context())
		},
	}

	return cmd
}
