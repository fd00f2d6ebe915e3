// Package migrations contains the embedded SQL files that move a winapidb
// database between schema versions.
package migrations

import "embed"

// Files exposes the compiled-in migration SQL files.
//
//go:embed *.sql
var Files embed.FS
