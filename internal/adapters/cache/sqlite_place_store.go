package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLite backed store mapping coordinate keys to place names. Used for
// local runs where no Postgres is available.
type SqlitePlaceStore struct {
	DB *sql.DB
}

func NewSqlitePlaceStore(db *sql.DB) *SqlitePlaceStore {
	return &SqlitePlaceStore{DB: db}
}

// Fetch cached place names for the given keys.
func (s *SqlitePlaceStore) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	if s.DB == nil {
		return nil, errors.New("place store: db is nil")
	}

	uniq := uniqueKeys(keys)
	if len(uniq) == 0 {
		return map[string]string{}, nil
	}

	ph := make([]string, 0, len(uniq))
	args := make([]any, 0, len(uniq))
	for _, k := range uniq {
		ph = append(ph, "?")
		args = append(args, k)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
        coord_key,
        place_name
    FROM place_cache
    WHERE coord_key IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get place cache: query place_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string, len(uniq))
	for rows.Next() {
		var key, name string
		if err := rows.Scan(&key, &name); err != nil {
			return nil, fmt.Errorf("get place cache: scan rows: %w", err)
		}
		out[key] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get place cache: row iteration: %w", err)
	}

	return out, nil
}

// Store key -> place name mappings. Existing keys keep their first value.
func (s *SqlitePlaceStore) PutMany(ctx context.Context, places map[string]string) error {
	if s.DB == nil {
		return errors.New("place store: db is nil")
	}

	if len(places) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert place cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR IGNORE INTO place_cache (coord_key, place_name)
    VALUES (?, ?);
	`)
	if err != nil {
		return fmt.Errorf("insert place cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for key, name := range places {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("insert place cache: empty coordinate key")
		}

		if _, err := stmt.ExecContext(ctx, key, name); err != nil {
			return fmt.Errorf("insert place cache key=%q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert place cache commit: %w", err)
	}

	return nil
}
