package ports

import (
	"biodiversity-map-service/internal/domain"
	"context"
)

// Contract for the observation backend that owns the source of truth.
type ObservationBackend interface {
	// Return one page of a user's observations narrowed by criteria.
	FetchPage(ctx context.Context, userID string, page int, criteria domain.FilterCriteria) (domain.ObservationPage, error)
	// Return the full unpaginated dataset used by the map.
	FetchAll(ctx context.Context, userID string) ([]domain.Observation, error)
}
