package backend

import (
	"biodiversity-map-service/internal/domain"
	"biodiversity-map-service/internal/platform/obs"
	"context"
	"fmt"
	"net/url"
)

type wireSuggestion struct {
	ScientificName string `json:"scientific_name"`
	CommonName     string `json:"common_name"`
	CnameSpecies   string `json:"cname_species"`
	NameID         string `json:"nameId"`
	Name           string `json:"name"`
	Location       string `json:"location"`
	Type           string `json:"type"`
}

// Suggest returns autocomplete entries for query.
func (c *Client) Suggest(
	ctx context.Context,
	query string,
	searchType domain.SearchType,
) (_ []domain.Suggestion, err error) {
	defer obs.Time(ctx, "backend.Suggest")(&err)

	q := url.Values{}
	q.Set("q", query)
	q.Set("type", string(searchType))

	data, err := get[[]wireSuggestion](ctx, c, "/profile/search-suggestions", q)
	if err != nil {
		return nil, fmt.Errorf("fetch suggestions: %w", err)
	}

	out := make([]domain.Suggestion, 0, len(data))
	for _, w := range data {
		if w.ScientificName != "" {
			out = append(out, domain.Suggestion{
				Kind:           domain.SuggestionSpecies,
				ScientificName: w.ScientificName,
				CommonName:     firstNonEmpty(w.CommonName, w.CnameSpecies, w.NameID),
			})
			continue
		}
		typ := w.Type
		if typ == "" {
			typ = string(domain.SuggestionLocation)
		}
		out = append(out, domain.Suggestion{
			Kind: domain.SuggestionLocation,
			Name: firstNonEmpty(w.Name, w.Location),
			Type: typ,
		})
	}

	return out, nil
}
