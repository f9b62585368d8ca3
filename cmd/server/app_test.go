package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/weeki-api/internal/api"
	"github.com/phrazzld/weeki-api/internal/config"
	"github.com/phrazzld/weeki-api/internal/domain"
	"github.com/phrazzld/weeki-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "integration-test-api-key"

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	hash, err := auth.HashAPIKey(testAPIKey)
	require.NoError(t, err)

	return &config.Config{
		Server: config.ServerConfig{
			Host:     "127.0.0.1",
			Port:     8000,
			LogLevel: "error",
		},
		Auth: config.AuthConfig{
			JWTSecret:            "0123456789abcdef0123456789abcdef",
			APIKeyHash:           hash,
			TokenLifetimeMinutes: 60,
		},
		Worker: config.WorkerConfig{
			Count:               2,
			QueueSize:           16,
			SpecialistLatencyMs: 1,
			UtilityLatencyMs:    1,
		},
		Monitor: config.MonitorConfig{Enabled: false},
	}
}

// newTestApplication builds a full application without a database; the
// mirror and sampler stay disabled, matching degraded-mode operation.
func newTestApplication(t *testing.T) *application {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := newApplication(testConfig(t), logger, nil)
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	return app
}

func obtainToken(t *testing.T, router http.Handler) string {
	t.Helper()

	body := bytes.NewBufferString(`{"api_key": "` + testAPIKey + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken
}

func TestApplicationEndToEnd(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()
	token := obtainToken(t, router)

	t.Run("health reports ready pool", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, 8, resp.ActiveWorkers)
	})

	t.Run("task endpoints require auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewBufferString(`{"directive":"x"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("submitted task completes and is queryable", func(t *testing.T) {
		body := bytes.NewBufferString(`{"directive": "write the launch announcement"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/tasks", body)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)

		var created api.TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, string(domain.TaskStatusPending), created.Status)

		require.Eventually(t, func() bool {
			req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+created.TaskID.String(), nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				return false
			}
			var got api.TaskResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				return false
			}
			return got.Status == string(domain.TaskStatusCompleted) &&
				got.AssignedWorker == "specialist_writing"
		}, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("listing works without durable mirror", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.TaskListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.GreaterOrEqual(t, resp.Total, int64(1))
	})

	t.Run("status reports pool and counts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.StatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ready", resp.PoolState)
		assert.Len(t, resp.Workers, 8)
	})
}

func TestApplicationShutdownIsClean(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := newApplication(testConfig(t), logger, nil)
	require.NoError(t, err)

	_, err = app.orch.CreateTask(context.Background(), "format the weekly digest", nil)
	require.NoError(t, err)

	app.cleanup()
}
