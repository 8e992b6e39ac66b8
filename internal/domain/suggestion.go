package domain

// SuggestionKind distinguishes species from place suggestions.
type SuggestionKind string

const (
	SuggestionSpecies  SuggestionKind = "species"
	SuggestionLocation SuggestionKind = "location"
)

// Suggestion is one autocomplete entry. Species suggestions carry the
// names; location suggestions carry Name and the backend's place Type.
type Suggestion struct {
	Kind           SuggestionKind `json:"kind"`
	ScientificName string         `json:"scientific_name,omitempty"`
	CommonName     string         `json:"common_name,omitempty"`
	Name           string         `json:"name,omitempty"`
	Type           string         `json:"type,omitempty"`
}

// Label is the text a suggestion would put into the search box.
func (s Suggestion) Label() string {
	if s.Kind == SuggestionSpecies {
		return s.ScientificName
	}
	return s.Name
}
