package handlers

import (
	"biodiversity-map-service/internal/api/dto"
	"biodiversity-map-service/internal/services"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ObservationHandler exposes the incrementally loaded table feed.
type ObservationHandler struct {
	View *services.MapView
}

func (h *ObservationHandler) List(c *gin.Context) {
	snap := h.View.Loader.Snapshot()

	res := dto.ListObservationsResponse{
		Observations: make([]dto.ObservationResponse, 0, len(snap.Observations)),
		Page:         snap.Page,
		LastPage:     snap.LastPage,
		HasMore:      snap.HasMore,
		Loading:      snap.State == services.LoaderLoading,
		State:        string(snap.State),
	}
	for _, o := range snap.Observations {
		res.Observations = append(res.Observations, dto.NewObservationResponse(o, snap.Places[o.Key()]))
	}
	if snap.Err != nil {
		res.Error = snap.Err.Error()
	}

	writeJSON(c, http.StatusOK, res)
}

// More is the table's end-of-list trigger. It is a no-op while a page is
// loading or when the feed is exhausted.
func (h *ObservationHandler) More(c *gin.Context) {
	started, err := h.View.Loader.LoadMore(c.Request.Context())
	switch {
	case err == nil:
	case errors.Is(err, services.ErrStaleResponse), errors.Is(err, context.Canceled):
		// Criteria changed while the page was in flight.
	default:
		writeError(c, http.StatusBadGateway, "observation backend unavailable")
		return
	}

	writeJSON(c, http.StatusOK, dto.LoadMoreResponse{
		Started: started,
		HasMore: h.View.Loader.HasMore(),
	})
}
