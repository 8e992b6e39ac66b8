package dto

type FilterRequest struct {
	Query      string `json:"query"`
	SearchType string `json:"search_type"`
	Date       string `json:"date"`
}

type FilterResponse struct {
	Changed    bool   `json:"changed"`
	Query      string `json:"query"`
	SearchType string `json:"search_type"`
	Date       string `json:"date,omitempty"`
	Filtered   int    `json:"filtered"`
	Error      string `json:"error,omitempty"`
}

type SelectionRequest struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	// Hover only: true sets the hovered marker, false clears it.
	Hovered *bool `json:"hovered"`
	Clear   bool  `json:"clear"`
}
