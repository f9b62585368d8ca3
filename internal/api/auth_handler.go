package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/weeki-api/internal/api/shared"
	"github.com/phrazzld/weeki-api/internal/redact"
	"github.com/phrazzld/weeki-api/internal/service/auth"
)

// tokenSubject is the subject claim stamped on issued tokens. A single
// shared API key identifies one logical client.
const tokenSubject = "api-client"

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	jwtService     auth.JWTService
	apiKeyVerifier auth.APIKeyVerifier
	tokenLifetime  time.Duration
	validator      *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	jwtService auth.JWTService,
	apiKeyVerifier auth.APIKeyVerifier,
	tokenLifetime time.Duration,
) *AuthHandler {
	return &AuthHandler{
		jwtService:     jwtService,
		apiKeyVerifier: apiKeyVerifier,
		tokenLifetime:  tokenLifetime,
		validator:      validator.New(),
	}
}

// Token handles POST /auth/token: it exchanges a valid API key for a
// short-lived JWT access token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := h.apiKeyVerifier.Verify(req.APIKey); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusUnauthorized, "Invalid credentials", err,
			shared.WithElevatedLogLevel())
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), tokenSubject)
	if err != nil {
		slog.Error("failed to generate token", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		AccessToken: token,
		ExpiresAt:   time.Now().UTC().Add(h.tokenLifetime).Format(time.RFC3339),
	})
}
