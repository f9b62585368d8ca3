package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/weeki-api/internal/agent"
	"github.com/phrazzld/weeki-api/internal/config"
	"github.com/phrazzld/weeki-api/internal/events"
	"github.com/phrazzld/weeki-api/internal/monitor"
	"github.com/phrazzld/weeki-api/internal/orchestrator"
	"github.com/phrazzld/weeki-api/internal/platform/postgres"
	"github.com/phrazzld/weeki-api/internal/service/auth"
	"github.com/phrazzld/weeki-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (nil when no database is available; all writes through them
	// are best-effort)
	taskMirror   store.TaskMirror
	metricsStore store.MetricsStore

	// Service interfaces
	jwtService     auth.JWTService
	apiKeyVerifier auth.APIKeyVerifier

	// Event system
	eventEmitter events.EventEmitter

	// Task processing
	orch    *orchestrator.Orchestrator
	sampler *monitor.Sampler
}

// newApplication creates a new application instance with all dependencies
// initialized and the task subsystem started. The db may be nil; the
// mirror and metrics sampler are then disabled.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.apiKeyVerifier = auth.NewBcryptAPIKeyVerifier(cfg.Auth.APIKeyHash)

	if db != nil {
		app.taskMirror = postgres.NewTaskStore(db)
		app.metricsStore = postgres.NewMetricsStore(db)
	}

	app.eventEmitter = setupEventEmitter(logger)

	app.orch, err = setupOrchestrator(app)
	if err != nil {
		return nil, fmt.Errorf("failed to setup orchestrator: %w", err)
	}

	if cfg.Monitor.Enabled && app.metricsStore != nil {
		interval := time.Duration(cfg.Monitor.IntervalSeconds) * time.Second
		app.sampler = monitor.NewSampler(app.orch, app.metricsStore, interval, logger)
		app.sampler.Start()
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupEventEmitter wires the default audit handler into a fresh emitter.
func setupEventEmitter(logger *slog.Logger) events.EventEmitter {
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLoggingHandler(logger))
	return emitter
}

// setupOrchestrator builds the worker pool, dispatcher, and orchestrator,
// and starts the processing loop.
func setupOrchestrator(app *application) (*orchestrator.Orchestrator, error) {
	poolConfig := agent.PoolConfig{
		SpecialistLatency: time.Duration(app.config.Worker.SpecialistLatencyMs) * time.Millisecond,
		UtilityLatency:    time.Duration(app.config.Worker.UtilityLatencyMs) * time.Millisecond,
	}
	pool := agent.NewPool(poolConfig, app.logger)
	dispatcher := agent.NewDispatcher(pool, app.logger)

	orch := orchestrator.New(pool, dispatcher, app.taskMirror, app.eventEmitter, orchestrator.Config{
		WorkerCount: app.config.Worker.Count,
		QueueSize:   app.config.Worker.QueueSize,
	}, app.logger)

	if err := orch.Start(); err != nil {
		return nil, fmt.Errorf("failed to start orchestrator: %w", err)
	}

	return orch, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run() error {
	router := app.setupRouter()

	if err := app.startHTTPServer(router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.sampler != nil {
		app.sampler.Stop()
	}

	if app.orch != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.orch.Shutdown(ctx); err != nil {
			app.logger.Error("orchestrator shutdown incomplete", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
