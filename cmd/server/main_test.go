package main

import (
	"biodiversity-map-service/internal/config"
	"context"
	"database/sql"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeStopsWhenContextEnds(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, time.Second) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after shutdown")
	}
}

func TestServeReportsListenFailure(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:-1", Handler: http.NotFoundHandler()}

	err := serve(context.Background(), srv, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestOpenPlaceStoreSqliteClosesConnection(t *testing.T) {
	cfg := config.Config{PlaceStore: "sqlite", DBPath: filepath.Join(t.TempDir(), "places.db")}

	store, closer, err := openPlaceStore(cfg)
	require.NoError(t, err)
	require.NotNil(t, store)

	require.NoError(t, store.PutMany(context.Background(), map[string]string{"-6.9175,107.6191": "Bandung"}))
	require.NoError(t, closer.Close())

	conn, ok := closer.(*sql.DB)
	require.True(t, ok)
	assert.Error(t, conn.Ping())
}

func TestOpenPlaceStoreRedisClosesClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Config{PlaceStore: "redis", RedisAddr: mr.Addr()}

	store, closer, err := openPlaceStore(cfg)
	require.NoError(t, err)
	require.NotNil(t, store)
	require.NoError(t, closer.Close())

	rc, ok := closer.(*redis.Client)
	require.True(t, ok)
	assert.ErrorIs(t, rc.Ping(context.Background()).Err(), redis.ErrClosed)
}

func TestOpenPlaceStoreMemoryAndUnknown(t *testing.T) {
	store, closer, err := openPlaceStore(config.Config{PlaceStore: "memory"})
	require.NoError(t, err)
	assert.Nil(t, store)
	assert.NoError(t, closer.Close())

	_, _, err = openPlaceStore(config.Config{PlaceStore: "etcd"})
	assert.Error(t, err)

	_, _, err = openPlaceStore(config.Config{PlaceStore: "postgres"})
	assert.Error(t, err)
}
