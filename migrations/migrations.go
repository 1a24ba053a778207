// Package migrations embeds the goose SQL migrations for the platform schema.
// The same files run against Postgres and SQLite, so they stick to portable types.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
