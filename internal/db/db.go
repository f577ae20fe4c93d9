// Package db opens the application's SQLite database through the pure-Go
// modernc.org driver.
//
// Three pragmas are applied on every open. WAL lets dashboard reads proceed
// while a pricing save is in flight. Foreign keys are off by default in
// SQLite and must be switched on to enforce the project -> business and
// finance -> business references. The 5s busy timeout covers the worst case
// of the snapshot cron writing while a request holds the write lock.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens the database at dbPath, applies the pragmas described in the
// package doc, and validates connectivity.
func Open(dbPath string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := database.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		database.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	return database, nil
}
