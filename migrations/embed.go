// Package migrations holds the SQL that creates the target schema in PostgreSQL.
package migrations

import "embed"

// FS contains NNNNNN_name.sql files and their NNNNNN_name_rollback.sql pairs.
//
//go:embed *.sql
var FS embed.FS
