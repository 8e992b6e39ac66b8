package handlers

import (
	"biodiversity-map-service/internal/api/dto"
	"biodiversity-map-service/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type GeocodeHandler struct {
	Places services.PlaceResolver
}

// Reverse resolves lat/lon to a place name. Lookup failures still answer
// 200 with the fallback name.
func (h *GeocodeHandler) Reverse(c *gin.Context) {
	lat, latOK, latErr := queryFloat(c, "lat")
	lon, lonOK, lonErr := queryFloat(c, "lon")
	if !latOK || !lonOK || latErr != nil || lonErr != nil {
		writeError(c, http.StatusBadRequest, "lat and lon are required numbers")
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeError(c, http.StatusBadRequest, "lat or lon out of range")
		return
	}

	writeJSON(c, http.StatusOK, dto.GeocodeResponse{
		Latitude:  lat,
		Longitude: lon,
		PlaceName: h.Places.Resolve(c.Request.Context(), lat, lon),
	})
}
