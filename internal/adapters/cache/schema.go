package cache

import (
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the place cache table. The statement is valid for
// both SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createPlaceCacheQuery := `
	CREATE TABLE IF NOT EXISTS place_cache (
        coord_key TEXT PRIMARY KEY,
        place_name TEXT NOT NULL
    );
	`

	statements := []string{
		createPlaceCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
