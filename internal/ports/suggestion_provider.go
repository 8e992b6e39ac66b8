package ports

import (
	"biodiversity-map-service/internal/domain"
	"context"
)

// Server-backed autocomplete lookup.
type SuggestionProvider interface {
	Suggest(ctx context.Context, query string, searchType domain.SearchType) ([]domain.Suggestion, error)
}
