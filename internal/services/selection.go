package services

import (
	"biodiversity-map-service/internal/domain"
	"sync"
)

// Emphasis is how strongly a marker is drawn.
type Emphasis struct {
	RadiusMeters int     `json:"radius_m"`
	FillOpacity  float64 `json:"fill_opacity"`
	Weight       int     `json:"weight"`
}

var (
	emphasisNormal = Emphasis{RadiusMeters: 800, FillOpacity: 0.6, Weight: 1}
	emphasisActive = Emphasis{RadiusMeters: 1000, FillOpacity: 0.8, Weight: 2}
)

// SelectionModel tracks the hovered and selected markers. It only affects
// rendering emphasis and never the datasets.
type SelectionModel struct {
	mu       sync.RWMutex
	selected *domain.ObservationKey
	hovered  *domain.ObservationKey
}

func NewSelectionModel() *SelectionModel { return &SelectionModel{} }

func (s *SelectionModel) Select(key domain.ObservationKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &key
}

func (s *SelectionModel) Hover(key domain.ObservationKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hovered = &key
}

func (s *SelectionModel) Unhover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hovered = nil
}

func (s *SelectionModel) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	s.hovered = nil
}

// Selected returns the selected marker, if any.
func (s *SelectionModel) Selected() (domain.ObservationKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return domain.ObservationKey{}, false
	}
	return *s.selected, true
}

// Emphasis returns the drawing emphasis for key.
func (s *SelectionModel) Emphasis(key domain.ObservationKey) Emphasis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if (s.selected != nil && *s.selected == key) || (s.hovered != nil && *s.hovered == key) {
		return emphasisActive
	}
	return emphasisNormal
}
