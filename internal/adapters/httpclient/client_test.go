package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSONRetriesTransientFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "FOBI/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		if hits.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	c := New(WithUserAgent("FOBI/1.0"), WithRetry(4, time.Millisecond))

	var out struct{ OK bool }
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &out))
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), hits.Load())
}

func TestGetJSONDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c := New(WithRetry(4, time.Millisecond))

	err := c.GetJSON(context.Background(), srv.URL, &struct{}{})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "nope", se.Body)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetJSONGivesUpAfterMaxAttempts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	err := New(WithRetry(2, time.Millisecond)).GetJSON(context.Background(), srv.URL, &struct{}{})
	require.Error(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRetryable(t *testing.T) {
	ctx := context.Background()
	canceled, cancel := context.WithCancel(ctx)
	cancel()

	assert.True(t, Retryable(ctx, &StatusError{Code: 502}))
	assert.True(t, Retryable(ctx, &StatusError{Code: 429}))
	assert.False(t, Retryable(ctx, &StatusError{Code: 400}))
	assert.False(t, Retryable(ctx, context.DeadlineExceeded))
	assert.False(t, Retryable(canceled, &StatusError{Code: 503}))
	assert.False(t, Retryable(ctx, errors.New("plain")))
}
