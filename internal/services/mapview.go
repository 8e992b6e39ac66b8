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

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
)

// MapView ties the map side together. It owns the full dataset, the
// baseline levels built from it and the filtered levels for the active
// criteria, and restarts the table loader whenever the criteria change.
type MapView struct {
	backend   ports.ObservationBackend
	snapshots ports.GridSnapshotStore
	userID    string

	Loader    *ObservationLoader
	Viewport  *ViewportController
	Selection *SelectionModel

	mu             sync.RWMutex
	all            []domain.Observation
	baseline       domain.Levels
	criteria       domain.FilterCriteria
	filtered       []domain.Observation
	filteredLevels domain.Levels
	err            error
	// version moves on every criteria change and every dataset publish.
	version uint64
}

// MapViewDeps groups MapView collaborators. Snapshots and Places may be nil.
type MapViewDeps struct {
	Backend     ports.ObservationBackend
	Snapshots   ports.GridSnapshotStore
	Places      PlaceResolver
	UserID      string
	InitialZoom float64
}

func NewMapView(d MapViewDeps) *MapView {
	return &MapView{
		backend:   d.Backend,
		snapshots: d.Snapshots,
		userID:    d.UserID,
		Loader:    NewObservationLoader(d.Backend, d.Places, d.UserID),
		Viewport:  NewViewportController(d.InitialZoom),
		Selection: NewSelectionModel(),
		criteria:  domain.FilterCriteria{SearchType: domain.SearchAll},
	}
}

// Load fetches the full dataset and the first table page independently.
// A failed dataset fetch keeps whatever was loaded before. A failed page
// fetch is reported through the loader snapshot, not here.
func (m *MapView) Load(ctx context.Context) (err error) {
	defer obs.Time(ctx, "mapview.load")(&err)

	m.mu.Lock()
	req := m.Loader.restart(ctx, m.criteria)
	m.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		all, err := m.backend.FetchAll(ctx, m.userID)
		if err != nil {
			m.mu.Lock()
			m.err = err
			m.mu.Unlock()
			return fmt.Errorf("fetch dataset: %w", err)
		}
		m.setDataset(ctx, all)
		return nil
	})
	g.Go(func() error {
		if err := m.Loader.run(req); err != nil && !errors.Is(err, ErrStaleResponse) {
			logger.L().Warn("first table page failed", "err", err)
		}
		return nil
	})
	return g.Wait()
}

// setDataset publishes all together with levels filtered for the criteria
// active at publish time. It rebuilds when the criteria move underneath it.
func (m *MapView) setDataset(ctx context.Context, all []domain.Observation) {
	baseline := m.levelsFor(ctx, all)

	for {
		m.mu.RLock()
		criteria, version := m.criteria, m.version
		m.mu.RUnlock()

		filtered, filteredLevels := m.filterLevels(ctx, all, criteria)

		m.mu.Lock()
		if version != m.version {
			m.mu.Unlock()
			continue
		}
		m.all = all
		m.baseline = baseline
		m.filtered = filtered
		m.filteredLevels = filteredLevels
		m.err = nil
		m.version++
		m.mu.Unlock()
		return
	}
}

func (m *MapView) filterLevels(ctx context.Context, all []domain.Observation, criteria domain.FilterCriteria) ([]domain.Observation, domain.Levels) {
	if criteria.IsIdentity() {
		return nil, domain.Levels{}
	}
	filtered := Filter(all, criteria)
	return filtered, m.levelsFor(ctx, filtered)
}

// ApplyFilter switches to criteria. Equal criteria are a no-op. Otherwise
// the filtered dataset and its levels are recomputed from the full set and
// the loader restarts from page 1 with the same criteria.
//
// The criteria change and the loader restart happen under one lock, so the
// last call to commit its criteria is also the last to restart the table.
func (m *MapView) ApplyFilter(ctx context.Context, criteria domain.FilterCriteria) (changed bool, err error) {
	defer obs.Time(ctx, "mapview.apply_filter")(&err)

	if criteria.SearchType == "" {
		criteria.SearchType = domain.SearchAll
	}

	m.mu.Lock()
	if criteria == m.criteria {
		m.mu.Unlock()
		return false, nil
	}
	m.criteria = criteria
	m.version++
	version, all := m.version, m.all
	req := m.Loader.restart(ctx, criteria)
	m.mu.Unlock()

	filtered, levels := m.filterLevels(ctx, all, criteria)

	m.mu.Lock()
	if version == m.version {
		m.filtered = filtered
		m.filteredLevels = levels
	}
	m.mu.Unlock()

	if err := m.Loader.run(req); err != nil {
		// A newer filter took over the table.
		if errors.Is(err, ErrStaleResponse) {
			return true, nil
		}
		return true, fmt.Errorf("restart table: %w", err)
	}
	return true, nil
}

// levelsFor returns the levels of observations, reusing a fresh snapshot
// when one exists for the same set.
func (m *MapView) levelsFor(ctx context.Context, observations []domain.Observation) domain.Levels {
	if m.snapshots == nil {
		metrics.LevelBuildsTotal.WithLabelValues("built").Inc()
		return BuildLevels(observations)
	}

	fp := Fingerprint(observations)
	levels, ok, err := m.snapshots.Load(ctx, fp)
	if err != nil {
		logger.L().Warn("grid snapshot load failed", "fingerprint", fp, "err", err)
	}
	if ok {
		metrics.LevelBuildsTotal.WithLabelValues("snapshot").Inc()
		return levels
	}

	levels = BuildLevels(observations)
	metrics.LevelBuildsTotal.WithLabelValues("built").Inc()
	if err := m.snapshots.Save(ctx, fp, levels); err != nil {
		logger.L().Warn("grid snapshot save failed", "fingerprint", fp, "err", err)
	}
	return levels
}

// Criteria returns the active criteria.
func (m *MapView) Criteria() domain.FilterCriteria {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.criteria
}

// Err returns the last dataset fetch failure, if any.
func (m *MapView) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// ActiveLevels returns the filtered levels when criteria are active,
// otherwise the baseline.
func (m *MapView) ActiveLevels() domain.Levels {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.criteria.IsIdentity() {
		return m.baseline
	}
	return m.filteredLevels
}

// ActiveObservations returns the dataset the map currently shows.
func (m *MapView) ActiveObservations() []domain.Observation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.criteria.IsIdentity() {
		return m.all
	}
	return m.filtered
}

// RenderResult is what the map draws for one viewport.
type RenderResult struct {
	Mode     domain.RenderMode
	Level    domain.LODLevel
	Filtered bool
	Cells    []domain.GridCell
	Markers  []domain.Observation
}

// Render settles the viewport at zoom and returns the cells, or markers,
// intersecting viewport.
func (m *MapView) Render(zoom float64, viewport orb.Bound) RenderResult {
	mode, _ := m.Viewport.ZoomEnd(zoom)

	m.mu.RLock()
	defer m.mu.RUnlock()

	filtered := !m.criteria.IsIdentity()
	levels, dataset := m.baseline, m.all
	if filtered {
		levels, dataset = m.filteredLevels, m.filtered
	}

	res := RenderResult{Mode: mode, Filtered: filtered}
	if level, ok := mode.Level(); ok {
		res.Level = level
		res.Cells = levels.Within(level, viewport)
		return res
	}

	res.Markers = make([]domain.Observation, 0)
	for _, o := range dataset {
		c, ok := o.Coordinates()
		if ok && viewport.Contains(c.Point()) {
			res.Markers = append(res.Markers, o)
		}
	}
	return res
}
