// Package mcp serves read-only symbol lookups over the Model Context
// Protocol.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/winapi-history/winapidb/internal/database"
	"github.com/winapi-history/winapidb/internal/usecase"
)

// Server wraps the MCP server with winapi lookup tools
type Server struct {
	server *mcp.Server
	dbCtx  *database.Context
}

// NewServer creates a server answering from dbCtx. The caller owns dbCtx.
func NewServer(dbCtx *database.Context, version string) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "winapidb",
		Version: version,
	}, nil)

	s := &Server{
		server: mcpServer,
		dbCtx:  dbCtx,
	}

	s.registerTools()

	return s
}

// Run starts the MCP server with stdio transport
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "winapi_symbol",
		Description: "Look up a Windows API symbol and the DLLs exporting it on each operating system",
	}, s.handleSymbol)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "winapi_availability",
		Description: "List availability facts for any combination of symbol, DLL path and operating system",
	}, s.handleAvailability)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "winapi_compare_os",
		Description: "List DLLs and symbols added or removed between two operating systems",
	}, s.handleCompare)
}

// Input/Output types for each tool

type SymbolInput struct {
	Name    *string `json:"name,omitempty" jsonschema:"raw export name"`
	Dll     *string `json:"dll,omitempty" jsonschema:"DLL file name of an ordinal-only export"`
	Ordinal *int64  `json:"ordinal,omitempty" jsonschema:"ordinal of an ordinal-only export"`
}

type SymbolOutput struct {
	Found  bool                  `json:"found"`
	Symbol *usecase.SymbolReport `json:"symbol,omitempty"`
}

type AvailabilityInput struct {
	Symbol  *string `json:"symbol,omitempty" jsonschema:"raw export name"`
	Dll     *string `json:"dll,omitempty" jsonschema:"DLL path relative to the operating system root"`
	OS      *string `json:"os,omitempty" jsonschema:"operating system short name"`
	Ordinal *int64  `json:"ordinal,omitempty" jsonschema:"with dllName, selects an ordinal-only export"`
	DllName *string `json:"dllName,omitempty" jsonschema:"with ordinal, selects an ordinal-only export"`
}

type AvailabilityOutput struct {
	Pattern string                        `json:"pattern"`
	Facts   []database.AvailabilityRecord `json:"facts"`
}

type CompareInput struct {
	Old string `json:"old" jsonschema:"short name of the older operating system"`
	New string `json:"new" jsonschema:"short name of the newer operating system"`
}

type CompareOutput struct {
	Comparison *usecase.Comparison `json:"comparison"`
}

func valueOf[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

// Tool handlers

func (s *Server) handleSymbol(ctx context.Context, req *mcp.CallToolRequest, input SymbolInput) (*mcp.CallToolResult, SymbolOutput, error) {
	id, err := usecase.ResolveSymbol(usecase.SymbolOptions{
		Name:    valueOf(input.Name),
		Dll:     valueOf(input.Dll),
		Ordinal: input.Ordinal,
	})
	if err != nil {
		return nil, SymbolOutput{}, fmt.Errorf("failed to resolve symbol: %w", err)
	}

	report, err := usecase.NewSymbol(s.dbCtx).Report(ctx, id)
	if err != nil {
		return nil, SymbolOutput{}, fmt.Errorf("failed to look up symbol: %w", err)
	}

	return nil, SymbolOutput{Found: report != nil, Symbol: report}, nil
}

func (s *Server) handleAvailability(ctx context.Context, req *mcp.CallToolRequest, input AvailabilityInput) (*mcp.CallToolResult, AvailabilityOutput, error) {
	query := usecase.AvailabilityInput{
		DllPath: valueOf(input.Dll),
		OS:      valueOf(input.OS),
	}
	if input.Symbol != nil || input.DllName != nil || input.Ordinal != nil {
		query.Symbol = &usecase.SymbolOptions{
			Name:    valueOf(input.Symbol),
			Dll:     valueOf(input.DllName),
			Ordinal: input.Ordinal,
		}
	}

	result, err := usecase.QueryAvailability(ctx, s.dbCtx, query)
	if err != nil {
		return nil, AvailabilityOutput{}, fmt.Errorf("failed to query availability: %w", err)
	}

	return nil, AvailabilityOutput{Pattern: result.Pattern, Facts: result.Facts}, nil
}

func (s *Server) handleCompare(ctx context.Context, req *mcp.CallToolRequest, input CompareInput) (*mcp.CallToolResult, CompareOutput, error) {
	cmp, err := usecase.CompareOperatingSystems(ctx, s.dbCtx, input.Old, input.New)
	if err != nil {
		return nil, CompareOutput{}, fmt.Errorf("failed to compare operating systems: %w", err)
	}

	return nil, CompareOutput{Comparison: cmp}, nil
}
