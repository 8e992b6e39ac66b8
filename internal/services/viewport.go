package services

import (
	"biodiversity-map-service/internal/domain"
	"sync"
)

// Zoom thresholds; a zoom strictly above a threshold selects that mode.
const (
	markersZoom = 12
	smallZoom   = 10
	mediumZoom  = 8
	largeZoom   = 6
)

// NextMode maps a settled zoom to the rendering mode. It is monotonic:
// a higher zoom never selects a coarser level.
func NextMode(zoom float64) domain.RenderMode {
	switch {
	case zoom > markersZoom:
		return domain.ModeMarkers
	case zoom > smallZoom:
		return domain.ModeSmall
	case zoom > mediumZoom:
		return domain.ModeMedium
	case zoom > largeZoom:
		return domain.ModeLarge
	default:
		return domain.ModeExtraLarge
	}
}

// ViewportController holds the current rendering mode. The mode is set
// once from the initial zoom and changes only on ZoomEnd, never on
// intermediate zoom frames. There is no hysteresis.
type ViewportController struct {
	mu   sync.RWMutex
	mode domain.RenderMode
	zoom float64
}

func NewViewportController(initialZoom float64) *ViewportController {
	return &ViewportController{mode: NextMode(initialZoom), zoom: initialZoom}
}

func (v *ViewportController) Mode() domain.RenderMode {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.mode
}

func (v *ViewportController) Zoom() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.zoom
}

// ZoomEnd handles a zoom-settled event and reports whether the mode changed.
func (v *ViewportController) ZoomEnd(zoom float64) (domain.RenderMode, bool) {
	next := NextMode(zoom)

	v.mu.Lock()
	defer v.mu.Unlock()

	v.zoom = zoom
	changed := next != v.mode
	v.mode = next
	return next, changed
}

// DensityColor maps a cell count to one of six fill colors, darkest for
// the densest cells.
func DensityColor(count int) string {
	switch {
	case count > 50:
		return "rgba(128, 0, 38, 0.5)"
	case count > 20:
		return "rgba(189, 0, 38, 0.5)"
	case count > 10:
		return "rgba(227, 26, 28, 0.5)"
	case count > 5:
		return "rgba(252, 78, 42, 0.5)"
	case count > 2:
		return "rgba(253, 141, 60, 0.5)"
	default:
		return "rgba(254, 180, 76, 0.5)"
	}
}

// SourceColor returns the marker color of a data provider.
func SourceColor(source domain.Source) string {
	switch source {
	case domain.SourceLocal:
		return "#2563eb"
	case domain.SourcePartnerA:
		return "#16a34a"
	case domain.SourcePartnerB:
		return "#dc2626"
	default:
		return "#6b7280"
	}
}
