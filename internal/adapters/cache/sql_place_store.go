package cache

import (
	"biodiversity-map-service/internal/platform/obs"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLPlaceStore is a Postgres-backed store mapping coordinate keys to place names.
type SQLPlaceStore struct {
	DB *sql.DB
}

func NewSQLPlaceStore(db *sql.DB) *SQLPlaceStore {
	return &SQLPlaceStore{DB: db}
}

// Fetch cached place names for the given keys.
func (s *SQLPlaceStore) GetMany(
	ctx context.Context,
	keys []string,
) (_ map[string]string, err error) {
	defer obs.Time(ctx, "place.store.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("place store: db is nil")
	}

	uniq := uniqueKeys(keys)
	if len(uniq) == 0 {
		return map[string]string{}, nil
	}

	q := `
	SELECT coord_key, place_name
    FROM place_cache
    WHERE coord_key = ANY($1::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, uniq)
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
func (s *SQLPlaceStore) PutMany(ctx context.Context, places map[string]string) error {
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
	INSERT INTO place_cache (coord_key, place_name)
    VALUES ($1, $2)
	ON CONFLICT (coord_key) DO NOTHING;
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

func uniqueKeys(keys []string) []string {
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}

		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return uniq
}
