package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/weeki-api/internal/config"
	"github.com/phrazzld/weeki-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestHandler(t *testing.T) *AuthHandler {
	t.Helper()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	hash, err := auth.HashAPIKey("valid-api-key")
	require.NoError(t, err)

	return NewAuthHandler(jwtService, auth.NewBcryptAPIKeyVerifier(hash), time.Hour)
}

func TestTokenEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("issues token for valid key", func(t *testing.T) {
		t.Parallel()

		handler := newAuthTestHandler(t)
		body := bytes.NewBufferString(`{"api_key": "valid-api-key"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/token", body)
		rec := httptest.NewRecorder()
		handler.Token(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp TokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.AccessToken)

		expiresAt, err := time.Parse(time.RFC3339, resp.ExpiresAt)
		require.NoError(t, err)
		assert.True(t, expiresAt.After(time.Now()))
	})

	t.Run("rejects wrong key", func(t *testing.T) {
		t.Parallel()

		handler := newAuthTestHandler(t)
		body := bytes.NewBufferString(`{"api_key": "wrong-key"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/token", body)
		rec := httptest.NewRecorder()
		handler.Token(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects missing key", func(t *testing.T) {
		t.Parallel()

		handler := newAuthTestHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()
		handler.Token(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		handler := newAuthTestHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		handler.Token(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
