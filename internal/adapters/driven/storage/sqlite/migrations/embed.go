// Package migrations embeds the schema migrations for the KB document
// store.
package migrations

import "embed"

// FS holds the versioned SQL files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
