package backend

import (
	"biodiversity-map-service/internal/adapters/httpclient"
	"biodiversity-map-service/internal/domain"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/api/", httpclient.New(httpclient.WithRetry(1, time.Millisecond)))
	require.NoError(t, err)
	return c
}

func TestFetchPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/profile/observations/42", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "Passer", q.Get("search"))
		assert.Equal(t, "species", q.Get("search_type"))
		assert.False(t, q.Has("date"))

		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"observations": [
					{"id": 11, "source": "fobi", "latitude": "-6.9175", "longitude": 107.6191,
					 "nama_latin": "Passer montanus", "nama_umum": "Burung Gereja", "observation_date": "2024-03-01"},
					{"id": "b-3", "source": "bird", "latitude": null, "longitude": "n/a",
					 "nameLat": "Passer domesticus", "cname_species": "House Sparrow", "created_at": "2024-03-02T10:00:00Z"}
				],
				"current_page": 2,
				"last_page": 3
			}
		}`))
	})

	page, err := c.FetchPage(context.Background(), "42", 2, domain.FilterCriteria{Query: "Passer", SearchType: domain.SearchSpecies})
	require.NoError(t, err)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 3, page.LastPage)
	require.Len(t, page.Observations, 2)

	first := page.Observations[0]
	assert.Equal(t, "11", first.ID)
	assert.Equal(t, domain.SourceLocal, first.Source)
	coords, ok := first.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, -6.9175, coords.Lat, 1e-9)
	assert.Equal(t, "Passer montanus", first.ScientificName)
	assert.Equal(t, "Burung Gereja", first.CommonName)

	second := page.Observations[1]
	assert.Equal(t, domain.ObservationKey{ID: "b-3", Source: domain.SourcePartnerA}, second.Key())
	_, ok = second.Coordinates()
	assert.False(t, ok)
	assert.Equal(t, "House Sparrow", second.CommonName)
	assert.Equal(t, "2024-03-02T10:00:00Z", second.ObservedAt)
}

func TestFetchPageSendsDate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-03-01", r.URL.Query().Get("date"))
		assert.Equal(t, "date", r.URL.Query().Get("search_type"))
		_, _ = w.Write([]byte(`{"success":true,"data":{"observations":[],"current_page":1,"last_page":1}}`))
	})

	_, err := c.FetchPage(context.Background(), "42", 1, domain.FilterCriteria{SearchType: domain.SearchDate, Date: "2024-03-01"})
	require.NoError(t, err)
}

func TestFetchAll(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("map"))
		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"id":1,"source":"butterfly","latitude":-8.65,"longitude":115.2,"scientific_name":"Troides helena"}
		]}`))
	})

	all, err := c.FetchAll(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.SourcePartnerB, all[0].Source)
	assert.Equal(t, "Kupunesia", all[0].Source.DisplayName())
}

func TestBackendFailureEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"user not found"}`))
	})

	_, err := c.FetchAll(context.Background(), "42")
	require.ErrorIs(t, err, domain.ErrBackendFailure)
	assert.Contains(t, err.Error(), "user not found")
}

func TestBackendTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.FetchPage(context.Background(), "42", 1, domain.FilterCriteria{})
	var se *httpclient.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestFetchPageValidatesInput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.FetchPage(context.Background(), "", 1, domain.FilterCriteria{})
	assert.Error(t, err)
	_, err = c.FetchPage(context.Background(), "42", 0, domain.FilterCriteria{})
	assert.Error(t, err)
}

func TestSuggest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/profile/search-suggestions", r.URL.Path)
		assert.Equal(t, "pas", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"scientific_name":"Passer montanus","common_name":"Eurasian Tree Sparrow"},
			{"name":"Pasuruan","type":"city"},
			{"location":"Pasar Minggu"}
		]}`))
	})

	got, err := c.Suggest(context.Background(), "pas", domain.SearchAll)
	require.NoError(t, err)
	assert.Equal(t, []domain.Suggestion{
		{Kind: domain.SuggestionSpecies, ScientificName: "Passer montanus", CommonName: "Eurasian Tree Sparrow"},
		{Kind: domain.SuggestionLocation, Name: "Pasuruan", Type: "city"},
		{Kind: domain.SuggestionLocation, Name: "Pasar Minggu", Type: "location"},
	}, got)
	assert.Equal(t, "Passer montanus", got[0].Label())
	assert.Equal(t, "Pasuruan", got[1].Label())
}
