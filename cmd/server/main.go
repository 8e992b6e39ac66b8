package main

import (
	"biodiversity-map-service/internal/adapters/backend"
	"biodiversity-map-service/internal/adapters/cache"
	"biodiversity-map-service/internal/adapters/geocoder"
	"biodiversity-map-service/internal/adapters/httpclient"
	"biodiversity-map-service/internal/api"
	"biodiversity-map-service/internal/config"
	"biodiversity-map-service/internal/platform/db"
	"biodiversity-map-service/internal/platform/logger"
	"biodiversity-map-service/internal/ports"
	"biodiversity-map-service/internal/services"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const shutdownGrace = 15 * time.Second

// main is the application composition root.
// It wires concrete adapters (backend API, Nominatim, place stores) behind
// ports and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		logger.L().Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	log := logger.Setup()
	config.Load()
	cfg := config.FromEnv()

	if cfg.ProfileUserID == "" {
		return errors.New("PROFILE_USER_ID is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openPlaceStore(cfg)
	if err != nil {
		return fmt.Errorf("open place store %q: %w", cfg.PlaceStore, err)
	}
	defer func() {
		if err := closeStore.Close(); err != nil {
			log.Warn("close place store", "err", err)
		}
	}()

	var snapshots ports.GridSnapshotStore
	if cfg.GridSnapshotDir != "" {
		s, err := cache.NewFileGridSnapshotStore(cfg.GridSnapshotDir, cache.DefaultSnapshotTTL)
		if err != nil {
			return fmt.Errorf("open grid snapshot store: %w", err)
		}
		snapshots = s
	}

	backendClient, err := backend.NewClient(cfg.BackendURL, httpclient.New())
	if err != nil {
		return fmt.Errorf("create backend client: %w", err)
	}

	// Nominatim asks clients to identify themselves.
	nominatim, err := geocoder.NewNominatimGeocoder(cfg.NominatimURL, httpclient.New(httpclient.WithUserAgent(cfg.NominatimUserAgent)))
	if err != nil {
		return fmt.Errorf("create geocoder: %w", err)
	}

	places, err := services.NewGeocodeCache(nominatim, store, cfg.GeocodeCacheSize)
	if err != nil {
		return fmt.Errorf("create geocode cache: %w", err)
	}

	view := services.NewMapView(services.MapViewDeps{
		Backend:     backendClient,
		Snapshots:   snapshots,
		Places:      places,
		UserID:      cfg.ProfileUserID,
		InitialZoom: cfg.InitialZoom,
	})

	// The server comes up while the dataset loads; the map answers empty until then.
	go func() {
		if err := view.Load(ctx); err != nil {
			log.Error("initial map load failed", "err", err)
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Deps{
		Map:       view,
		Suggester: services.NewSuggester(backendClient, cfg.SuggestDebounce),
		Places:    places,
	})

	// Timeouts are tuned for cold-cache geocoding (external API latency).
	log.Info("server listening", "addr", ":"+cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return serve(ctx, srv, shutdownGrace)
}

// serve runs srv until it fails or ctx ends, then drains in-flight requests
// for up to grace.
func serve(ctx context.Context, srv *http.Server, grace time.Duration) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.L().Info("shutting down", "grace", grace.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openPlaceStore builds the persistent geocode tier selected by PLACE_STORE.
// "memory" means no persistent tier.
func openPlaceStore(cfg config.Config) (ports.PlaceStore, io.Closer, error) {
	switch cfg.PlaceStore {
	case "", "memory":
		return nil, nopCloser{}, nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres place store")
		}
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := cache.InitSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return cache.NewSQLPlaceStore(conn), conn, nil

	case "sqlite":
		conn, err := db.OpenSqlite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := cache.InitSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return cache.NewSqlitePlaceStore(conn), conn, nil

	case "redis":
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rc.Ping(ctx).Err(); err != nil {
			rc.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		return cache.NewRedisPlaceStore(rc, 0), rc, nil

	default:
		return nil, nil, fmt.Errorf("unknown PLACE_STORE %q", cfg.PlaceStore)
	}
}
