package geocoder

import (
	"biodiversity-map-service/internal/domain"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// MockGeocoder answers from a fixed table and counts upstream calls.
// Calls block while Hold is set until Release is called.
type MockGeocoder struct {
	mu      sync.Mutex
	places  map[string]string
	hold    chan struct{}
	calls   atomic.Int64
	FailAll bool
}

func NewMockGeocoder(places map[string]string) *MockGeocoder {
	return &MockGeocoder{places: places}
}

func (m *MockGeocoder) Hold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hold = make(chan struct{})
}

func (m *MockGeocoder) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hold != nil {
		close(m.hold)
		m.hold = nil
	}
}

func (m *MockGeocoder) Calls() int64 { return m.calls.Load() }

func (m *MockGeocoder) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	m.calls.Add(1)

	m.mu.Lock()
	hold := m.hold
	m.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if m.FailAll {
		return "", fmt.Errorf("mock geocoder: unavailable")
	}

	key := fmt.Sprintf("%.4f,%.4f", lat, lon)
	if name, ok := m.places[key]; ok {
		return name, nil
	}
	return domain.UnknownLocation, nil
}
