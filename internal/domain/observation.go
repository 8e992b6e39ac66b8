package domain

import (
	"strings"
	"time"
)

// Source identifies the data provider an observation was merged from.
// Values are the provider codes used on the wire.
type Source string

const (
	SourceLocal    Source = "fobi"
	SourcePartnerA Source = "bird"
	SourcePartnerB Source = "butterfly"
)

// DisplayName returns the provider's public name.
func (s Source) DisplayName() string {
	switch s {
	case SourceLocal:
		return "FOBI"
	case SourcePartnerA:
		return "Burungnesia"
	case SourcePartnerB:
		return "Kupunesia"
	default:
		return string(s)
	}
}

// ObservationKey is the true identity of an observation.
// IDs are only unique within a single source.
type ObservationKey struct {
	ID     string `json:"id"`
	Source Source `json:"source"`
}

// Observation is a single geolocated sighting. It is immutable once fetched;
// filtered views are always re-derived from the full set.
type Observation struct {
	ID             string   `json:"id"`
	Source         Source   `json:"source"`
	Lat            *float64 `json:"latitude,omitempty"`
	Lon            *float64 `json:"longitude,omitempty"`
	ScientificName string   `json:"scientific_name"`
	CommonName     string   `json:"common_name"`
	Location       string   `json:"location,omitempty"`
	ObservedAt     string   `json:"observation_date,omitempty"`
	PhotoURL       string   `json:"photo_url,omitempty"`
	Family         string   `json:"family,omitempty"`
}

func (o Observation) Key() ObservationKey {
	return ObservationKey{ID: o.ID, Source: o.Source}
}

// Coordinates returns the observation position. ok is false when either
// component is missing or not a finite number.
func (o Observation) Coordinates() (_ Coordinates, ok bool) {
	if o.Lat == nil || o.Lon == nil {
		return Coordinates{}, false
	}
	c := Coordinates{Lat: *o.Lat, Lon: *o.Lon}
	if !c.Valid() {
		return Coordinates{}, false
	}
	return c, true
}

var observationDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// CalendarDate returns the observation date as YYYY-MM-DD.
//
// Date-only values are taken literally. Timestamps carrying an offset are
// normalized to UTC first; timestamps without one are read as UTC.
func (o Observation) CalendarDate() (string, bool) {
	return CalendarDate(o.ObservedAt)
}

// CalendarDate normalizes a date or timestamp string to a UTC calendar day.
func CalendarDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.Format(time.DateOnly), true
	}
	for _, layout := range observationDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.DateOnly), true
		}
	}
	return "", false
}

// ObservationPage is one page of the paginated table feed.
type ObservationPage struct {
	Observations []Observation
	CurrentPage  int
	LastPage     int
}
