// Package migrations хранит SQL схемы для Postgres.
package migrations

import "embed"

// FS содержит файлы *.up.sql в порядке применения по имени.
//
//go:embed *.up.sql
var FS embed.FS
