package config

import (
	"biodiversity-map-service/internal/platform/logger"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads a .env file when present. Real environment variables win.
func Load() {
	if err := godotenv.Load(); err != nil {
		logger.L().Info("no .env file found (using environment variables)")
	}
}

// Get returns the trimmed value of key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Int returns key parsed as an int, or fallback when unset or malformed.
func Int(key string, fallback int) int {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.L().Warn("config: ignoring malformed int", "key", key, "value", v)
		return fallback
	}
	return n
}

// Duration returns key parsed with time.ParseDuration, or fallback.
func Duration(key string, fallback time.Duration) time.Duration {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.L().Warn("config: ignoring malformed duration", "key", key, "value", v)
		return fallback
	}
	return d
}

// Config is the service configuration assembled from the environment.
type Config struct {
	Port               string
	BackendURL         string
	ProfileUserID      string
	NominatimURL       string
	NominatimUserAgent string
	GeocodeCacheSize   int
	PlaceStore         string
	DatabaseURL        string
	DBPath             string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	GridSnapshotDir    string
	SuggestDebounce    time.Duration
	InitialZoom        float64
}

// FromEnv builds a Config from environment variables with local defaults.
func FromEnv() Config {
	zoom, err := strconv.ParseFloat(Get("INITIAL_ZOOM", "5"), 64)
	if err != nil {
		zoom = 5
	}

	return Config{
		Port:               Get("PORT", "8080"),
		BackendURL:         Get("BACKEND_URL", "http://localhost:8000/api"),
		ProfileUserID:      Get("PROFILE_USER_ID", ""),
		NominatimURL:       Get("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: Get("NOMINATIM_USER_AGENT", "FOBI/1.0"),
		GeocodeCacheSize:   Int("GEOCODE_CACHE_SIZE", 4096),
		PlaceStore:         strings.ToLower(Get("PLACE_STORE", "memory")),
		DatabaseURL:        Get("DATABASE_URL", ""),
		DBPath:             Get("DB_PATH", "data/places.db"),
		RedisAddr:          Get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:      Get("REDIS_PASS", ""),
		RedisDB:            Int("REDIS_DB", 0),
		GridSnapshotDir:    Get("GRID_SNAPSHOT_DIR", ""),
		SuggestDebounce:    Duration("SUGGEST_DEBOUNCE", 300*time.Millisecond),
		InitialZoom:        zoom,
	}
}
