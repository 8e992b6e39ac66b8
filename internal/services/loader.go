package services

import (
	"biodiversity-map-service/internal/domain"
	"biodiversity-map-service/internal/platform/logger"
	"biodiversity-map-service/internal/platform/metrics"
	"biodiversity-map-service/internal/platform/obs"
	"biodiversity-map-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrStaleResponse marks a page answer that belonged to superseded
	// criteria or arrived out of order. It is dropped, never applied.
	ErrStaleResponse = errors.New("stale page response")
)

// LoaderState is the loader's position in idle -> loading -> idle | exhausted.
type LoaderState string

const (
	LoaderIdle      LoaderState = "idle"
	LoaderLoading   LoaderState = "loading"
	LoaderExhausted LoaderState = "exhausted"
)

// PlaceResolver resolves a coordinate to a place name and never fails.
type PlaceResolver interface {
	Resolve(ctx context.Context, lat, lon float64) string
}

// LoaderSnapshot is a consistent copy of the loader's state.
type LoaderSnapshot struct {
	Criteria     domain.FilterCriteria
	Observations []domain.Observation
	Places       map[domain.ObservationKey]string
	Page         int
	LastPage     int
	HasMore      bool
	State        LoaderState
	Err          error
}

// ObservationLoader accumulates table pages for the current criteria.
//
// Every request is tagged with the generation current when it was issued.
// Reset bumps the generation and cancels the in-flight request; any answer
// from an older generation, or for a page other than the next expected
// one, is discarded.
type ObservationLoader struct {
	backend   ports.ObservationBackend
	places    PlaceResolver
	userID    string
	placeJobs int

	mu         sync.Mutex
	criteria   domain.FilterCriteria
	generation uint64
	cancel     context.CancelFunc
	items      []domain.Observation
	names      map[domain.ObservationKey]string
	page       int
	lastPage   int
	hasMore    bool
	loading    bool
	err        error
}

// NewObservationLoader builds a loader for userID. places may be nil, in
// which case no place names are resolved.
func NewObservationLoader(backend ports.ObservationBackend, places PlaceResolver, userID string) *ObservationLoader {
	return &ObservationLoader{
		backend:   backend,
		places:    places,
		userID:    userID,
		placeJobs: 8,
		names:     map[domain.ObservationKey]string{},
		hasMore:   true,
	}
}

// Reset discards everything loaded for the previous criteria and loads
// page 1 under the new ones. Clearing the accumulator, page counter and
// hasMore happens atomically before the request is issued.
func (l *ObservationLoader) Reset(ctx context.Context, criteria domain.FilterCriteria) error {
	return l.run(l.restart(ctx, criteria))
}

// restart clears the loader for criteria and tags the page 1 request
// without issuing it. Callers that order restarts under their own lock run
// the returned request after releasing it.
func (l *ObservationLoader) restart(ctx context.Context, criteria domain.FilterCriteria) pageRequest {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.generation++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.criteria = criteria
	l.items = nil
	l.names = map[domain.ObservationKey]string{}
	l.page = 0
	l.lastPage = 0
	l.hasMore = true
	l.loading = false
	l.err = nil
	return l.beginLocked(ctx, 1)
}

// LoadMore requests the next page when nothing is loading and more pages
// exist. started is false when the request was not issued.
func (l *ObservationLoader) LoadMore(ctx context.Context) (started bool, err error) {
	l.mu.Lock()
	if l.loading || !l.hasMore {
		l.mu.Unlock()
		return false, nil
	}
	req := l.beginLocked(ctx, l.page+1)
	l.mu.Unlock()

	return true, l.run(req)
}

type pageRequest struct {
	ctx        context.Context
	cancel     context.CancelFunc
	page       int
	generation uint64
	criteria   domain.FilterCriteria
}

// beginLocked marks the loader busy and tags a request for page with the
// current generation. l.mu must be held.
func (l *ObservationLoader) beginLocked(ctx context.Context, page int) pageRequest {
	reqCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.loading = true
	return pageRequest{
		ctx:        reqCtx,
		cancel:     cancel,
		page:       page,
		generation: l.generation,
		criteria:   l.criteria,
	}
}

func (l *ObservationLoader) run(req pageRequest) (err error) {
	defer obs.Time(req.ctx, "loader.load")(&err)
	defer req.cancel()

	page, gen := req.page, req.generation
	res, fetchErr := l.backend.FetchPage(req.ctx, l.userID, page, req.criteria)

	var names map[domain.ObservationKey]string
	if fetchErr == nil {
		names = l.resolvePlaces(req.ctx, res.Observations)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		metrics.LoaderPagesTotal.WithLabelValues("stale").Inc()
		logger.L().Debug("dropping stale page", "page", page, "generation", gen, "current", l.generation)
		return ErrStaleResponse
	}

	l.loading = false
	l.cancel = nil

	if fetchErr != nil {
		if errors.Is(fetchErr, context.Canceled) {
			return fetchErr
		}
		metrics.LoaderPagesTotal.WithLabelValues("failed").Inc()
		// Previously loaded pages stay in place.
		l.err = fetchErr
		return fmt.Errorf("load page %d: %w", page, fetchErr)
	}
	if page != l.page+1 {
		metrics.LoaderPagesTotal.WithLabelValues("stale").Inc()
		return ErrStaleResponse
	}

	l.items = append(l.items, res.Observations...)
	for k, v := range names {
		l.names[k] = v
	}
	l.page = page
	l.lastPage = res.LastPage
	l.hasMore = page < res.LastPage
	l.err = nil
	metrics.LoaderPagesTotal.WithLabelValues("applied").Inc()

	return nil
}

// resolvePlaces looks up place names for a page with bounded concurrency.
func (l *ObservationLoader) resolvePlaces(ctx context.Context, page []domain.Observation) map[domain.ObservationKey]string {
	if l.places == nil || len(page) == 0 {
		return nil
	}

	var mu sync.Mutex
	out := make(map[domain.ObservationKey]string, len(page))

	var g errgroup.Group
	g.SetLimit(l.placeJobs)
	for _, o := range page {
		c, ok := o.Coordinates()
		if !ok {
			continue
		}
		key := o.Key()
		g.Go(func() error {
			name := l.places.Resolve(ctx, c.Lat, c.Lon)
			mu.Lock()
			out[key] = name
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// HasMore reports whether another page exists for the current criteria.
func (l *ObservationLoader) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasMore
}

// Snapshot returns a copy of the current state.
func (l *ObservationLoader) Snapshot() LoaderSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make(map[domain.ObservationKey]string, len(l.names))
	for k, v := range l.names {
		names[k] = v
	}

	state := LoaderIdle
	switch {
	case l.loading:
		state = LoaderLoading
	case !l.hasMore && l.page > 0:
		state = LoaderExhausted
	}

	return LoaderSnapshot{
		Criteria:     l.criteria,
		Observations: append([]domain.Observation(nil), l.items...),
		Places:       names,
		Page:         l.page,
		LastPage:     l.lastPage,
		HasMore:      l.hasMore,
		State:        state,
		Err:          l.err,
	}
}
