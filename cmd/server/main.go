// Package main implements the entry point for the weeki API server,
// which accepts free-text directives, routes them to a pool of
// specialist and utility workers, and serves task status queries.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/phrazzld/weeki-api/internal/config"
	"github.com/phrazzld/weeki-api/internal/platform/logger"
	"github.com/phrazzld/weeki-api/internal/platform/postgres"
)

// appVersion is reported by the root endpoint.
const appVersion = "0.1.0"

func main() {
	migrateCmd := flag.String("migrate", "", "run database migrations (up|status) and exit")
	flag.Parse()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if *migrateCmd != "" {
		if err := handleMigrations(cfg, *migrateCmd); err != nil {
			appLogger.Error("migration failed", "command", *migrateCmd, "error", err)
			os.Exit(1)
		}
		return
	}

	// The in-memory registry is authoritative; the durable mirror is
	// best-effort, so a missing database degrades rather than aborts.
	var db *sql.DB
	if cfg.Database.URL == "" {
		appLogger.Warn("no database configured, running without durable task mirror")
	} else if db, err = setupAppDatabase(cfg, appLogger); err != nil {
		appLogger.Warn("running without durable task mirror", "error", err)
		db = nil
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		appLogger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		appLogger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"worker_count", cfg.Worker.Count,
		"queue_size", cfg.Worker.QueueSize,
		"monitor_enabled", cfg.Monitor.Enabled)

	return cfg, appLogger, nil
}

// handleMigrations runs the requested migration command against the
// configured database and returns when it finishes.
func handleMigrations(cfg *config.Config, command string) error {
	db, err := setupAppDatabase(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to connect for migrations: %w", err)
	}
	defer func() { _ = db.Close() }()

	switch command {
	case "up":
		return postgres.RunMigrations(db)
	case "status":
		return postgres.MigrationStatus(db)
	default:
		return fmt.Errorf("unknown migration command %q (want up or status)", command)
	}
}
