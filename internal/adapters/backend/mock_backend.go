package backend

import (
	"biodiversity-map-service/internal/domain"
	"context"
	"strings"
	"sync"
)

type MockCall struct {
	Page     int
	Criteria domain.FilterCriteria
}

// MockBackend serves a fixed observation set from memory. Gated pages
// block until released and then answer even if the caller gave up, which
// models a response arriving late.
type MockBackend struct {
	mu       sync.Mutex
	all      []domain.Observation
	pageSize int
	gates    map[int]chan struct{}
	calls    []MockCall
	started  chan MockCall

	AllErr  error
	PageErr error
}

func NewMockBackend(all []domain.Observation, pageSize int) *MockBackend {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &MockBackend{
		all:      all,
		pageSize: pageSize,
		gates:    map[int]chan struct{}{},
		started:  make(chan MockCall, 64),
	}
}

// Gate makes the next requests for page wait until the returned channel is closed.
func (m *MockBackend) Gate(page int) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan struct{})
	m.gates[page] = ch
	return ch
}

// Started delivers every page request as it begins.
func (m *MockBackend) Started() <-chan MockCall { return m.started }

func (m *MockBackend) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

func (m *MockBackend) FetchAll(ctx context.Context, userID string) ([]domain.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.AllErr != nil {
		return nil, m.AllErr
	}
	return append([]domain.Observation(nil), m.all...), nil
}

func (m *MockBackend) FetchPage(
	ctx context.Context,
	userID string,
	page int,
	criteria domain.FilterCriteria,
) (domain.ObservationPage, error) {
	call := MockCall{Page: page, Criteria: criteria}

	m.mu.Lock()
	m.calls = append(m.calls, call)
	gate := m.gates[page]
	delete(m.gates, page)
	m.mu.Unlock()

	select {
	case m.started <- call:
	default:
	}

	if gate != nil {
		<-gate
	}
	if m.PageErr != nil {
		return domain.ObservationPage{}, m.PageErr
	}

	matched := make([]domain.Observation, 0, len(m.all))
	for _, o := range m.all {
		if mockMatch(o, criteria) {
			matched = append(matched, o)
		}
	}

	lastPage := (len(matched) + m.pageSize - 1) / m.pageSize
	if lastPage == 0 {
		lastPage = 1
	}
	start := (page - 1) * m.pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + m.pageSize
	if end > len(matched) {
		end = len(matched)
	}

	return domain.ObservationPage{
		Observations: append([]domain.Observation(nil), matched[start:end]...),
		CurrentPage:  page,
		LastPage:     lastPage,
	}, nil
}

// mockMatch is a coarse stand-in for the server-side search.
func mockMatch(o domain.Observation, c domain.FilterCriteria) bool {
	q := strings.ToLower(strings.TrimSpace(c.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(o.ScientificName), q) ||
		strings.Contains(strings.ToLower(o.CommonName), q) ||
		strings.Contains(strings.ToLower(o.Location), q)
}
