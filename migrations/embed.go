// Package migrations bundles the SQL schema migrations with the binary.
package migrations

import "embed"

// FS holds the *.sql migration files
//
//go:embed *.sql
var FS embed.FS
