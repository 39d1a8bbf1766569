// Package migrations embeds the SQL schema migrations for the bitecheck API.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
