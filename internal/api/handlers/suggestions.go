package handlers

import (
	"biodiversity-map-service/internal/api/dto"
	"biodiversity-map-service/internal/domain"
	"biodiversity-map-service/internal/services"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type SuggestionHandler struct {
	Suggester *services.Suggester
}

// Suggest answers typeahead queries. A request overtaken by a newer one
// gets 409 so the client can drop it.
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	st, err := domain.ParseSearchType(c.Query("type"))
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.Suggester.Suggest(c.Request.Context(), c.Query("q"), st)
	switch {
	case err == nil:
		writeJSON(c, http.StatusOK, dto.NewSuggestionsResponse(items))
	case errors.Is(err, services.ErrSuperseded):
		writeError(c, http.StatusConflict, "superseded by a newer query")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The caller left or ran out of time.
		writeError(c, http.StatusRequestTimeout, "request ended before suggestions were ready")
	default:
		internalError(c, "suggest", err)
	}
}
