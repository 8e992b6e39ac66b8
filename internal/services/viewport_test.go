package services

import (
	"biodiversity-map-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

// coarseness orders modes from finest (markers) to coarsest.
var coarseness = map[domain.RenderMode]int{
	domain.ModeMarkers:    0,
	domain.ModeSmall:      1,
	domain.ModeMedium:     2,
	domain.ModeLarge:      3,
	domain.ModeExtraLarge: 4,
}

func TestNextModeThresholds(t *testing.T) {
	tests := []struct {
		zoom float64
		want domain.RenderMode
	}{
		{0, domain.ModeExtraLarge},
		{6, domain.ModeExtraLarge},
		{6.01, domain.ModeLarge},
		{8, domain.ModeLarge},
		{9, domain.ModeMedium},
		{10, domain.ModeMedium},
		{11, domain.ModeSmall},
		{12, domain.ModeSmall},
		{12.5, domain.ModeMarkers},
		{18, domain.ModeMarkers},
		{-3, domain.ModeExtraLarge},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NextMode(tt.zoom), "zoom %v", tt.zoom)
	}
}

func TestNextModeMonotonic(t *testing.T) {
	prev := NextMode(-1)
	for z := -1.0; z <= 22; z += 0.05 {
		m := NextMode(z)
		_, known := coarseness[m]
		assert.True(t, known, "zoom %v gave unknown mode %q", z, m)
		assert.LessOrEqual(t, coarseness[m], coarseness[prev], "zoom %v coarser than a lower zoom", z)
		prev = m
	}
}

func TestViewportControllerTransitionsOnZoomEnd(t *testing.T) {
	v := NewViewportController(5)
	assert.Equal(t, domain.ModeExtraLarge, v.Mode())

	mode, changed := v.ZoomEnd(5.5)
	assert.False(t, changed)
	assert.Equal(t, domain.ModeExtraLarge, mode)

	mode, changed = v.ZoomEnd(13)
	assert.True(t, changed)
	assert.Equal(t, domain.ModeMarkers, mode)
	assert.Equal(t, domain.ModeMarkers, v.Mode())
	assert.Equal(t, 13.0, v.Zoom())

	_, changed = v.ZoomEnd(9)
	assert.True(t, changed)
	assert.Equal(t, domain.ModeMedium, v.Mode())
}

func TestRenderModeLevel(t *testing.T) {
	level, ok := domain.ModeSmall.Level()
	assert.True(t, ok)
	assert.Equal(t, domain.LevelSmall, level)

	_, ok = domain.ModeMarkers.Level()
	assert.False(t, ok)
}

func TestDensityColor(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{51, "rgba(128, 0, 38, 0.5)"},
		{50, "rgba(189, 0, 38, 0.5)"},
		{21, "rgba(189, 0, 38, 0.5)"},
		{20, "rgba(227, 26, 28, 0.5)"},
		{11, "rgba(227, 26, 28, 0.5)"},
		{10, "rgba(252, 78, 42, 0.5)"},
		{6, "rgba(252, 78, 42, 0.5)"},
		{5, "rgba(253, 141, 60, 0.5)"},
		{3, "rgba(253, 141, 60, 0.5)"},
		{2, "rgba(254, 180, 76, 0.5)"},
		{1, "rgba(254, 180, 76, 0.5)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DensityColor(tt.count), "count %d", tt.count)
	}
}

func TestSourceColor(t *testing.T) {
	assert.Equal(t, "#2563eb", SourceColor(domain.SourceLocal))
	assert.Equal(t, "#16a34a", SourceColor(domain.SourcePartnerA))
	assert.Equal(t, "#dc2626", SourceColor(domain.SourcePartnerB))
	assert.Equal(t, "#6b7280", SourceColor("other"))
}

func TestSelectionEmphasis(t *testing.T) {
	s := NewSelectionModel()
	a := domain.ObservationKey{ID: "1", Source: domain.SourceLocal}
	sameIDOtherSource := domain.ObservationKey{ID: "1", Source: domain.SourcePartnerA}

	assert.Equal(t, emphasisNormal, s.Emphasis(a))

	s.Select(a)
	assert.Equal(t, emphasisActive, s.Emphasis(a))
	assert.Equal(t, emphasisNormal, s.Emphasis(sameIDOtherSource))
	got, ok := s.Selected()
	assert.True(t, ok)
	assert.Equal(t, a, got)

	s.Hover(sameIDOtherSource)
	assert.Equal(t, emphasisActive, s.Emphasis(sameIDOtherSource))

	s.Unhover()
	assert.Equal(t, emphasisNormal, s.Emphasis(sameIDOtherSource))
	assert.Equal(t, emphasisActive, s.Emphasis(a))

	s.Clear()
	_, ok = s.Selected()
	assert.False(t, ok)
	assert.Equal(t, emphasisNormal, s.Emphasis(a))
}
