package ports

import "context"

// Persistent tier behind the in-process geocode cache.
// Keys are coordinate keys produced by the geocode cache.
type PlaceStore interface {
	// Return cached place names for the keys that are present.
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
	// Store key -> place name mappings.
	PutMany(ctx context.Context, places map[string]string) error
}
