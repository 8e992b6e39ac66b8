package api

import (
	"biodiversity-map-service/internal/api/handlers"
	"biodiversity-map-service/internal/platform/metrics"
	"biodiversity-map-service/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps are the services the HTTP API serves.
type Deps struct {
	Map       *services.MapView
	Suggester *services.Suggester
	Places    services.PlaceResolver
}

// NewRouter wires HTTP handlers with their dependencies.
// Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestIDMiddleware(), loggingMiddleware())

	mapHandler := &handlers.MapHandler{View: d.Map}
	obsHandler := &handlers.ObservationHandler{View: d.Map}
	suggestHandler := &handlers.SuggestionHandler{Suggester: d.Suggester}
	geocodeHandler := &handlers.GeocodeHandler{Places: d.Places}

	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.GET("/map/cells", mapHandler.Cells)
	r.PUT("/map/filter", mapHandler.Filter)
	r.POST("/map/selection", mapHandler.Selection)

	r.GET("/observations", obsHandler.List)
	r.POST("/observations/more", obsHandler.More)

	r.GET("/suggestions", suggestHandler.Suggest)
	r.GET("/geocode", geocodeHandler.Reverse)

	return r
}
