package me

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/valumind/auth/internal/http/middleware"
	"github.com/valumind/auth/internal/httputil"
	"github.com/valumind/auth/pkg/auth"
	"github.com/valumind/auth/pkg/domain"
)

// Handler handles authenticated user introspection endpoints.
type Handler struct {
	logger          *slog.Logger
	passwordService *auth.PasswordService
}

// NewHandler creates a new introspection handler.
func NewHandler(logger *slog.Logger, passwordService *auth.PasswordService) *Handler {
	return &Handler{
		logger:          logger,
		passwordService: passwordService,
	}
}

// GetMe handles GET /v1/auth/me.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.passwordService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to load user", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	httputil.JSON(w, http.StatusOK, user.Public())
}

// ValidateResponse reports token validity and elevation for callers that
// cannot verify tokens locally.
type ValidateResponse struct {
	Valid     bool   `json:"valid"`
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	SteppedUp bool   `json:"stepped_up"`
}

// Validate handles GET /v1/auth/validate.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	claims, ok := middleware.GetClaims(ctx)
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.passwordService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to load user", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	httputil.JSON(w, http.StatusOK, ValidateResponse{
		Valid:     true,
		UserID:    user.ID,
		Email:     user.Email,
		SteppedUp: claims.SteppedUp,
	})
}
