package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/valumind/auth/internal/http/middleware"
	"github.com/valumind/auth/internal/httputil"
	"github.com/valumind/auth/internal/validate"
)

// Handler relays step-up protocol calls to the auth service. The routes it
// serves sit behind the Auth middleware, so every caller already holds a
// valid token; the relayed request carries that same token.
type Handler struct {
	logger *slog.Logger
	authc  *AuthClient
}

// NewHandler creates a new step-up relay handler.
func NewHandler(logger *slog.Logger, authc *AuthClient) *Handler {
	return &Handler{
		logger: logger,
		authc:  authc,
	}
}

// Initiate handles POST /v1/step-up/initiate.
func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	bearer, ok := middleware.BearerToken(r)
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "missing authorization")
		return
	}

	result, err := h.authc.InitiateStepUp(r.Context(), bearer)
	if err != nil {
		h.logger.Error("step-up initiate relay failed", "error", err)
		httputil.Error(w, http.StatusBadGateway, "failed to initiate step-up authentication")
		return
	}

	relay(w, result)
}

// VerifyRequest represents a relayed verification request.
type VerifyRequest struct {
	OTP string `json:"otp" validate:"required"`
}

// Verify handles POST /v1/step-up/verify.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	bearer, ok := middleware.BearerToken(r)
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "missing authorization")
		return
	}

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "otp is required")
		return
	}

	result, err := h.authc.VerifyStepUp(r.Context(), bearer, req.OTP)
	if err != nil {
		h.logger.Error("step-up verify relay failed", "error", err)
		httputil.Error(w, http.StatusBadGateway, "failed to verify step-up authentication")
		return
	}

	relay(w, result)
}

// relay writes the auth service's response through unchanged, preserving
// its status code and JSON body.
func relay(w http.ResponseWriter, result *AuthResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.Status)
	_, _ = w.Write(result.Body)
}
