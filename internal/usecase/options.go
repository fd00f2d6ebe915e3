package usecase

import (
	"fmt"

	"github.com/winapi-history/winapidb/internal/identity"
)

// SymbolOptions is how the CLI and the MCP server name a symbol: either by
// raw export name or by DLL file name plus ordinal.
type SymbolOptions struct {
	Name    string
	Dll     string
	Ordinal *int64
}

// ResolveSymbol converts CLI/MCP-level symbol options into a validated
// identity.
func ResolveSymbol(opts SymbolOptions) (identity.Identity, error) {
	switch {
	case opts.Name != "" && (opts.Dll != "" || opts.Ordinal != nil):
		return nil, fmt.Errorf("a symbol name cannot be combined with --dll or --ordinal")
	case opts.Name != "":
		id := identity.Named{RawName: opts.Name}
		return id, id.Validate()
	case opts.Dll != "" && opts.Ordinal != nil:
		id := identity.Ordinal{DLLName: opts.Dll, Ordinal: *opts.Ordinal}
		return id, id.Validate()
	case opts.Dll != "" || opts.Ordinal != nil:
		return nil, fmt.Errorf("--dll and --ordinal must be given together")
	default:
		return nil, fmt.Errorf("a symbol name or --dll with --ordinal is required")
	}
}
