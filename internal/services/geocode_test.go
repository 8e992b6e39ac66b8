package services

import (
	"biodiversity-map-service/internal/adapters/geocoder"
	"biodiversity-map-service/internal/adapters/httpclient"
	"biodiversity-map-service/internal/domain"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPlaceStore struct {
	mu     sync.Mutex
	places map[string]string
}

func newMemPlaceStore(seed map[string]string) *memPlaceStore {
	s := &memPlaceStore{places: map[string]string{}}
	for k, v := range seed {
		s.places[k] = v
	}
	return s
}

func (s *memPlaceStore) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]string{}
	for _, k := range keys {
		if v, ok := s.places[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *memPlaceStore) PutMany(ctx context.Context, places map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range places {
		s.places[k] = v
	}
	return nil
}

func (s *memPlaceStore) get(k string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.places[k]
	return v, ok
}

const bandungKey = "-6.9175,107.6191"

func TestCoordKey(t *testing.T) {
	assert.Equal(t, bandungKey, CoordKey(-6.91748, 107.61912))
	assert.Equal(t, CoordKey(1.00001, 2.00001), CoordKey(1.00002, 2.00002))
}

func TestGeocodeCacheSharesOneUpstreamRequest(t *testing.T) {
	g := geocoder.NewMockGeocoder(map[string]string{bandungKey: "Bandung, Jawa Barat, Indonesia"})
	c, err := NewGeocodeCache(g, nil, 16)
	require.NoError(t, err)

	g.Hold()

	const callers = 10
	results := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Resolve(context.Background(), -6.9175, 107.6191)
		}(i)
	}

	require.Eventually(t, func() bool { return g.Calls() == 1 }, time.Second, 5*time.Millisecond)
	g.Release()
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "Bandung, Jawa Barat, Indonesia", r)
	}
	assert.Equal(t, int64(1), g.Calls())

	assert.Equal(t, "Bandung, Jawa Barat, Indonesia", c.Resolve(context.Background(), -6.9175, 107.6191))
	assert.Equal(t, int64(1), g.Calls())
}

func TestGeocodeCacheFailureIsNotCached(t *testing.T) {
	g := geocoder.NewMockGeocoder(map[string]string{bandungKey: "Bandung"})
	g.FailAll = true
	c, err := NewGeocodeCache(g, nil, 16)
	require.NoError(t, err)

	assert.Equal(t, domain.UnknownLocation, c.Resolve(context.Background(), -6.9175, 107.6191))
	assert.Equal(t, 0, c.Len())

	g.FailAll = false
	assert.Equal(t, "Bandung", c.Resolve(context.Background(), -6.9175, 107.6191))
	assert.Equal(t, int64(2), g.Calls())
	assert.Equal(t, 1, c.Len())
}

func TestGeocodeCacheCachesUnknownPlaces(t *testing.T) {
	g := geocoder.NewMockGeocoder(nil)
	c, err := NewGeocodeCache(g, nil, 16)
	require.NoError(t, err)

	assert.Equal(t, domain.UnknownLocation, c.Resolve(context.Background(), 0, 0))
	assert.Equal(t, domain.UnknownLocation, c.Resolve(context.Background(), 0, 0))
	assert.Equal(t, int64(1), g.Calls())
}

func TestGeocodeCacheRetriesPlacesNominatimCannotResolve(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	t.Cleanup(srv.Close)

	g, err := geocoder.NewNominatimGeocoder(srv.URL, httpclient.New(httpclient.WithRetry(1, time.Millisecond)))
	require.NoError(t, err)
	store := newMemPlaceStore(nil)
	c, err := NewGeocodeCache(g, store, 16)
	require.NoError(t, err)

	assert.Equal(t, domain.UnknownLocation, c.Resolve(context.Background(), -8, 116))
	assert.Equal(t, domain.UnknownLocation, c.Resolve(context.Background(), -8, 116))
	assert.Equal(t, int64(2), hits.Load())
	assert.Equal(t, 0, c.Len())

	got, err := store.GetMany(context.Background(), []string{CoordKey(-8, 116)})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGeocodeCacheIsBounded(t *testing.T) {
	g := geocoder.NewMockGeocoder(nil)
	c, err := NewGeocodeCache(g, nil, 2)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		c.Resolve(context.Background(), float64(i), float64(i))
	}
	assert.Equal(t, 2, c.Len())

	// The oldest entry was evicted and needs a new lookup.
	c.Resolve(context.Background(), 0, 0)
	assert.Equal(t, int64(6), g.Calls())
}

func TestGeocodeCacheStoreTier(t *testing.T) {
	g := geocoder.NewMockGeocoder(map[string]string{"1.0000,2.0000": "Upstream Place"})
	store := newMemPlaceStore(map[string]string{bandungKey: "Stored Place"})
	c, err := NewGeocodeCache(g, store, 16)
	require.NoError(t, err)

	assert.Equal(t, "Stored Place", c.Resolve(context.Background(), -6.9175, 107.6191))
	assert.Equal(t, int64(0), g.Calls())

	assert.Equal(t, "Upstream Place", c.Resolve(context.Background(), 1, 2))
	assert.Equal(t, int64(1), g.Calls())

	got, ok := store.get("1.0000,2.0000")
	require.True(t, ok)
	assert.Equal(t, "Upstream Place", got)
}

func TestGeocodeCacheCallerGivesUp(t *testing.T) {
	g := geocoder.NewMockGeocoder(map[string]string{bandungKey: "Bandung"})
	c, err := NewGeocodeCache(g, nil, 16)
	require.NoError(t, err)

	g.Hold()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan string, 1)
	go func() { done <- c.Resolve(ctx, -6.9175, 107.6191) }()

	require.Eventually(t, func() bool { return g.Calls() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case got := <-done:
		assert.Equal(t, domain.UnknownLocation, got)
	case <-time.After(time.Second):
		t.Fatal("Resolve did not return after its context was canceled")
	}

	// The shared lookup keeps going and fills the cache for later callers.
	g.Release()
	require.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Bandung", c.Resolve(context.Background(), -6.9175, 107.6191))
	assert.Equal(t, int64(1), g.Calls())
}

func TestNewGeocodeCacheRequiresUpstream(t *testing.T) {
	_, err := NewGeocodeCache(nil, nil, 1)
	assert.Error(t, err)
}
