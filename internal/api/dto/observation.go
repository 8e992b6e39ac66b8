package dto

import "biodiversity-map-service/internal/domain"

type ObservationResponse struct {
	ID             string   `json:"id"`
	Source         string   `json:"source"`
	SourceName     string   `json:"source_name"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	ScientificName string   `json:"scientific_name"`
	CommonName     string   `json:"common_name"`
	Location       string   `json:"location,omitempty"`
	PlaceName      string   `json:"place_name,omitempty"`
	ObservedAt     string   `json:"observation_date,omitempty"`
	PhotoURL       string   `json:"photo_url,omitempty"`
	Family         string   `json:"family,omitempty"`
}

func NewObservationResponse(o domain.Observation, place string) ObservationResponse {
	return ObservationResponse{
		ID:             o.ID,
		Source:         string(o.Source),
		SourceName:     o.Source.DisplayName(),
		Latitude:       o.Lat,
		Longitude:      o.Lon,
		ScientificName: o.ScientificName,
		CommonName:     o.CommonName,
		Location:       o.Location,
		PlaceName:      place,
		ObservedAt:     o.ObservedAt,
		PhotoURL:       o.PhotoURL,
		Family:         o.Family,
	}
}

type ListObservationsResponse struct {
	Observations []ObservationResponse `json:"observations"`
	Page         int                   `json:"page"`
	LastPage     int                   `json:"last_page"`
	HasMore      bool                  `json:"has_more"`
	Loading      bool                  `json:"loading"`
	State        string                `json:"state"`
	Error        string                `json:"error,omitempty"`
}

type LoadMoreResponse struct {
	Started bool `json:"started"`
	HasMore bool `json:"has_more"`
}

// SuggestionResponse is a suggestion plus the text it fills into the search box.
type SuggestionResponse struct {
	domain.Suggestion
	Label string `json:"label"`
}

type SuggestionsResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
}

func NewSuggestionsResponse(items []domain.Suggestion) SuggestionsResponse {
	out := make([]SuggestionResponse, 0, len(items))
	for _, s := range items {
		out = append(out, SuggestionResponse{Suggestion: s, Label: s.Label()})
	}
	return SuggestionsResponse{Suggestions: out}
}

type GeocodeResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PlaceName string  `json:"place_name"`
}
