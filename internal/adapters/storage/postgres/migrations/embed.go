// Package migrations contiene el esquema versionado para golang-migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
