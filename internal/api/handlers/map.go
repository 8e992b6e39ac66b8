package handlers

import (
	"biodiversity-map-service/internal/api/dto"
	"biodiversity-map-service/internal/domain"
	"biodiversity-map-service/internal/services"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var worldBound = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// MapHandler serves the aggregated map layers and the criteria that drive them.
type MapHandler struct {
	View *services.MapView
}

// Cells treats the request as a settled zoom and returns a GeoJSON
// FeatureCollection of the cells, or markers, inside the viewport.
func (h *MapHandler) Cells(c *gin.Context) {
	zoom, ok, err := queryFloat(c, "zoom")
	if err != nil {
		writeError(c, http.StatusBadRequest, "zoom must be a number")
		return
	}
	if !ok {
		zoom = h.View.Viewport.Zoom()
	}

	viewport, err := viewportFromQuery(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	res := h.View.Render(zoom, viewport)

	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{
		"mode":     string(res.Mode),
		"filtered": res.Filtered,
	}
	if res.Level != "" {
		fc.ExtraMembers["level"] = string(res.Level)
	}
	if err := h.View.Err(); err != nil {
		fc.ExtraMembers["error"] = err.Error()
	}

	for _, cell := range res.Cells {
		f := geojson.NewFeature(cell.Bounds.ToPolygon())
		f.Properties["count"] = cell.Count
		f.Properties["level"] = string(res.Level)
		f.Properties["cell_size"] = cell.CellSize
		f.Properties["color"] = services.DensityColor(cell.Count)
		fc.Append(f)
	}

	for _, o := range res.Markers {
		coords, _ := o.Coordinates()
		emphasis := h.View.Selection.Emphasis(o.Key())

		f := geojson.NewFeature(coords.Point())
		f.ID = string(o.Source) + ":" + o.ID
		f.Properties["id"] = o.ID
		f.Properties["source"] = string(o.Source)
		f.Properties["source_name"] = o.Source.DisplayName()
		f.Properties["scientific_name"] = o.ScientificName
		f.Properties["common_name"] = o.CommonName
		f.Properties["color"] = services.SourceColor(o.Source)
		f.Properties["radius_m"] = emphasis.RadiusMeters
		f.Properties["fill_opacity"] = emphasis.FillOpacity
		f.Properties["weight"] = emphasis.Weight
		fc.Append(f)
	}

	writeJSON(c, http.StatusOK, fc)
}

// viewportFromQuery reads north/south/east/west. All four or none must be
// given; none means the whole world.
func viewportFromQuery(c *gin.Context) (orb.Bound, error) {
	names := []string{"north", "south", "east", "west"}
	vals := make(map[string]float64, len(names))
	for _, n := range names {
		v, ok, err := queryFloat(c, n)
		if err != nil {
			return orb.Bound{}, errors.New(n + " must be a number")
		}
		if ok {
			vals[n] = v
		}
	}

	switch len(vals) {
	case 0:
		return worldBound, nil
	case len(names):
	default:
		return orb.Bound{}, errors.New("north, south, east and west must be given together")
	}

	if vals["south"] > vals["north"] {
		return orb.Bound{}, errors.New("south must not exceed north")
	}
	if vals["west"] > vals["east"] {
		return orb.Bound{}, errors.New("west must not exceed east")
	}

	return orb.Bound{
		Min: orb.Point{vals["west"], vals["south"]},
		Max: orb.Point{vals["east"], vals["north"]},
	}, nil
}

// Filter applies new criteria to the map and restarts the table feed.
func (h *MapHandler) Filter(c *gin.Context) {
	var req dto.FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json body")
		return
	}

	st, err := domain.ParseSearchType(req.SearchType)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	criteria := domain.FilterCriteria{
		Query:      strings.TrimSpace(req.Query),
		SearchType: st,
		Date:       strings.TrimSpace(req.Date),
	}
	if criteria.Date != "" {
		if _, ok := domain.CalendarDate(criteria.Date); !ok {
			writeError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	changed, err := h.View.ApplyFilter(c.Request.Context(), criteria)

	res := dto.FilterResponse{
		Changed:    changed,
		Query:      criteria.Query,
		SearchType: string(criteria.SearchType),
		Date:       criteria.Date,
		Filtered:   len(h.View.ActiveObservations()),
	}
	if err != nil {
		// The map already shows the new criteria; only the table restart failed.
		res.Error = err.Error()
	}

	writeJSON(c, http.StatusOK, res)
}

// Selection updates marker emphasis. It never changes any dataset.
func (h *MapHandler) Selection(c *gin.Context) {
	var req dto.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json body")
		return
	}

	sel := h.View.Selection
	switch {
	case req.Clear:
		sel.Clear()
	case req.Hovered != nil && !*req.Hovered:
		sel.Unhover()
	default:
		if strings.TrimSpace(req.ID) == "" || strings.TrimSpace(req.Source) == "" {
			writeError(c, http.StatusBadRequest, "id and source are required")
			return
		}
		key := domain.ObservationKey{ID: req.ID, Source: domain.Source(req.Source)}
		if req.Hovered != nil {
			sel.Hover(key)
		} else {
			sel.Select(key)
		}
	}

	res := gin.H{"selected": nil}
	if key, ok := sel.Selected(); ok {
		res["selected"] = key
	}
	writeJSON(c, http.StatusOK, res)
}
