package domain

import (
	"fmt"
	"strings"
)

// SearchType selects which observation fields a query is matched against.
type SearchType string

const (
	SearchAll      SearchType = "all"
	SearchSpecies  SearchType = "species"
	SearchLocation SearchType = "location"
	SearchDate     SearchType = "date"
)

// ParseSearchType maps a wire value to a SearchType. Empty means all.
func ParseSearchType(s string) (SearchType, error) {
	switch t := SearchType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return SearchAll, nil
	case SearchAll, SearchSpecies, SearchLocation, SearchDate:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSearchType, s)
	}
}

// FilterCriteria narrows both the map dataset and the table feed.
// Criteria are compared with ==; equal criteria never trigger recomputation.
type FilterCriteria struct {
	Query      string     `json:"query"`
	SearchType SearchType `json:"search_type"`
	Date       string     `json:"date,omitempty"`
}

// IsIdentity reports whether the criteria select everything.
func (c FilterCriteria) IsIdentity() bool {
	return strings.TrimSpace(c.Query) == "" && strings.TrimSpace(c.Date) == ""
}
