package services

import (
	"biodiversity-map-service/internal/domain"
	"strings"
)

// Filter returns the observations matching criteria. The input is never
// modified; identity criteria return a copy of the full input.
//
// Text searches are case-insensitive substring matches:
//   - all: scientific name, common name or location
//   - species: scientific or common name
//   - location: the location text only
//
// A date search keeps observations recorded on criteria.Date (YYYY-MM-DD),
// compared as UTC calendar days.
func Filter(observations []domain.Observation, criteria domain.FilterCriteria) []domain.Observation {
	out := make([]domain.Observation, 0, len(observations))
	if criteria.IsIdentity() {
		return append(out, observations...)
	}

	m := newMatcher(criteria)
	for _, o := range observations {
		if m.match(o) {
			out = append(out, o)
		}
	}
	return out
}

type matcher struct {
	searchType domain.SearchType
	query      string
	date       string
	dateGiven  bool
	dateOK     bool
}

func newMatcher(c domain.FilterCriteria) matcher {
	m := matcher{
		searchType: c.SearchType,
		query:      strings.ToLower(strings.TrimSpace(c.Query)),
	}
	if m.searchType == "" {
		m.searchType = domain.SearchAll
	}
	if d := strings.TrimSpace(c.Date); d != "" {
		m.dateGiven = true
		m.date, m.dateOK = domain.CalendarDate(d)
	}
	return m
}

func (m matcher) match(o domain.Observation) bool {
	switch m.searchType {
	case domain.SearchSpecies:
		return m.text(o.ScientificName, o.CommonName)
	case domain.SearchLocation:
		return m.text(o.Location)
	case domain.SearchDate:
		return m.day(o)
	default:
		return m.text(o.ScientificName, o.CommonName, o.Location)
	}
}

// text matches when the query is empty or any field contains it.
func (m matcher) text(fields ...string) bool {
	if m.query == "" {
		return true
	}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), m.query) {
			return true
		}
	}
	return false
}

// day matches when no date was given or the calendar days are equal.
// An unparseable criteria date matches nothing.
func (m matcher) day(o domain.Observation) bool {
	if !m.dateGiven {
		return true
	}
	if !m.dateOK {
		return false
	}
	d, ok := o.CalendarDate()
	return ok && d == m.date
}
