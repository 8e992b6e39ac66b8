package ports

import (
	"biodiversity-map-service/internal/domain"
	"context"
)

// Stores built LOD levels keyed by a fingerprint of the observation set.
type GridSnapshotStore interface {
	// ok is false when no fresh snapshot exists for fingerprint.
	Load(ctx context.Context, fingerprint string) (_ domain.Levels, ok bool, err error)
	Save(ctx context.Context, fingerprint string, levels domain.Levels) error
}
