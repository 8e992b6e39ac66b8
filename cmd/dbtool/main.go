package main

import (
	"biodiversity-map-service/internal/adapters/cache"
	"biodiversity-map-service/internal/config"
	"biodiversity-map-service/internal/platform/db"
	"biodiversity-map-service/internal/platform/logger"
	"database/sql"
	"os"
)

// dbtool prepares the Postgres place cache used by PLACE_STORE=postgres.
func main() {
	log := logger.Setup()
	config.Load()

	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Error("open database", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := initSchema(conn); err != nil {
		log.Error("schema initialization failed", "err", err)
		os.Exit(1)
	}
}

func initSchema(conn *sql.DB) error {
	logger.L().Info("initializing place cache schema")
	if err := cache.InitSchema(conn); err != nil {
		return err
	}
	logger.L().Info("schema ready")
	return nil
}
