package services

import (
	"biodiversity-map-service/internal/domain"
	"biodiversity-map-service/internal/platform/logger"
	"biodiversity-map-service/internal/platform/metrics"
	"biodiversity-map-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultGeocodeCacheSize = 4096
	geocodeLookupTimeout    = 10 * time.Second
)

// CoordKey is the cache key of a coordinate: both components at four
// decimals (about 11 m).
func CoordKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// GeocodeCache memoizes coordinate -> place name lookups.
//
// Lookups go through a bounded in-process LRU, then the optional
// persistent store, then the upstream geocoder. Concurrent misses for the
// same key share a single upstream request. Failures resolve to
// domain.UnknownLocation and are not cached, so a later call retries.
//
// The cache is safe for concurrent use.
type GeocodeCache struct {
	upstream ports.ReverseGeocoder
	store    ports.PlaceStore
	entries  *lru.Cache[string, string]
	inflight singleflight.Group
}

// NewGeocodeCache builds a cache holding at most size entries in memory.
// store may be nil.
func NewGeocodeCache(upstream ports.ReverseGeocoder, store ports.PlaceStore, size int) (*GeocodeCache, error) {
	if upstream == nil {
		return nil, errors.New("geocode cache: upstream geocoder is nil")
	}
	if size <= 0 {
		size = DefaultGeocodeCacheSize
	}

	entries, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("geocode cache: create lru: %w", err)
	}

	return &GeocodeCache{upstream: upstream, store: store, entries: entries}, nil
}

// Len returns the number of in-memory entries.
func (c *GeocodeCache) Len() int { return c.entries.Len() }

// Resolve returns the place name for lat/lon. It never fails.
func (c *GeocodeCache) Resolve(ctx context.Context, lat, lon float64) string {
	key := CoordKey(lat, lon)

	if name, ok := c.entries.Get(key); ok {
		metrics.GeocodeCacheHitsTotal.WithLabelValues("memory").Inc()
		return name
	}

	ch := c.inflight.DoChan(key, func() (any, error) {
		// The shared lookup must not die with whichever caller started it.
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), geocodeLookupTimeout)
		defer cancel()
		return c.lookup(lookupCtx, key, lat, lon), nil
	})

	select {
	case res := <-ch:
		return res.Val.(string)
	case <-ctx.Done():
		return domain.UnknownLocation
	}
}

func (c *GeocodeCache) lookup(ctx context.Context, key string, lat, lon float64) string {
	// A flight that settled just before this one started has filled the LRU.
	if name, ok := c.entries.Get(key); ok {
		metrics.GeocodeCacheHitsTotal.WithLabelValues("memory").Inc()
		return name
	}

	if c.store != nil {
		found, err := c.store.GetMany(ctx, []string{key})
		if err != nil {
			logger.L().Warn("geocode store read failed", "key", key, "err", err)
		} else if name, ok := found[key]; ok && name != "" {
			metrics.GeocodeCacheHitsTotal.WithLabelValues("store").Inc()
			c.entries.Add(key, name)
			return name
		}
	}

	metrics.GeocodeCacheMissesTotal.Inc()
	name, err := c.upstream.Reverse(ctx, lat, lon)
	if err != nil {
		metrics.GeocodeFailuresTotal.Inc()
		logger.L().Warn("reverse geocode failed", "key", key, "err", err)
		return domain.UnknownLocation
	}
	if name == "" {
		name = domain.UnknownLocation
	}

	c.entries.Add(key, name)
	if c.store != nil {
		if err := c.store.PutMany(ctx, map[string]string{key: name}); err != nil {
			logger.L().Warn("geocode store write failed", "key", key, "err", err)
		}
	}
	return name
}
