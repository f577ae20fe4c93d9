// Package migrations bundles the schema migration files into the binary and
// applies them through goose, so the server never depends on a migrations
// directory being present at runtime.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var files embed.FS

const dialect = "sqlite3"

// Up applies every pending schema migration.
func Up(db *sql.DB) error {
	goose.SetBaseFS(files)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, "sql"); err != nil {
		return fmt.Errorf("apply schema migrations: %w", err)
	}

	return nil
}
