// Package migrations embeds the goose SQL migrations for the Postgres
// identity repository.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
