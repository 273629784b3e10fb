// Package migrations embeds the player store schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
