// Package migration embeds the SQL schema migrations.
package migration

import "embed"

// FS holds the migration files applied by dbpkg.Migrate.
//
//go:embed *.sql
var FS embed.FS
