package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OpDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "biomap_op_duration_ms",
		Help:    "Duration of timed operations in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"op", "status"})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "biomap_http_requests_total",
		Help: "Served HTTP requests by route and status code",
	}, []string{"route", "code"})
	GeocodeCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "biomap_geocode_cache_hits_total",
		Help: "Geocode lookups answered from a cache tier",
	}, []string{"tier"})
	GeocodeCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "biomap_geocode_cache_misses_total",
		Help: "Geocode lookups that reached the upstream geocoder",
	})
	GeocodeFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "biomap_geocode_failures_total",
		Help: "Upstream geocode failures degraded to the fallback name",
	})
	LoaderPagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "biomap_loader_pages_total",
		Help: "Table pages by outcome (applied, stale, failed)",
	}, []string{"outcome"})
	SuggestionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "biomap_suggestions_total",
		Help: "Suggestion requests by outcome (ok, short, superseded, failed)",
	}, []string{"outcome"})
	LevelBuildsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "biomap_level_builds_total",
		Help: "LOD level sets obtained, by origin (built, snapshot)",
	}, []string{"origin"})
)

func init() {
	prometheus.MustRegister(OpDurationMs)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(GeocodeCacheHitsTotal)
	prometheus.MustRegister(GeocodeCacheMissesTotal)
	prometheus.MustRegister(GeocodeFailuresTotal)
	prometheus.MustRegister(LoaderPagesTotal)
	prometheus.MustRegister(SuggestionsTotal)
	prometheus.MustRegister(LevelBuildsTotal)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
