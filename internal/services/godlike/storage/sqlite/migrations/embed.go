package migrations

import "embed"

// FS contains embedded SQLite migrations for character and roll storage.
//
//go:embed *.sql
var FS embed.FS
