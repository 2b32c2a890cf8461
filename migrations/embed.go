// Package migrations embeds the SQL files applied by "clinic-portal migrate".
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
