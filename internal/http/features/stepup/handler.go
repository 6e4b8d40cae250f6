package stepup

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/valumind/auth/internal/http/middleware"
	"github.com/valumind/auth/internal/httputil"
	"github.com/valumind/auth/internal/validate"
	"github.com/valumind/auth/pkg/auth"
	"github.com/valumind/auth/pkg/domain"
)

// Handler handles the step-up challenge endpoints. Both require an
// authenticated caller; the protocol never self-escalates an
// unauthenticated one.
type Handler struct {
	logger        *slog.Logger
	stepUpService *auth.StepUpService
}

// NewHandler creates a new step-up handler.
func NewHandler(logger *slog.Logger, stepUpService *auth.StepUpService) *Handler {
	return &Handler{
		logger:        logger,
		stepUpService: stepUpService,
	}
}

// Initiate handles POST /v1/auth/step-up/initiate. The target user is the
// authenticated caller; any outstanding code is replaced.
func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.stepUpService.Initiate(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusBadRequest, "unknown user")
			return
		}
		h.logger.Error("step-up initiate failed", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to send verification code")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{
		"message": "Verification code sent.",
	})
}

// VerifyRequest represents a step-up verification request.
type VerifyRequest struct {
	OTP string `json:"otp" validate:"required,numeric"`
}

// VerifyResponse carries the freshly minted step-up token.
type VerifyResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// Verify handles POST /v1/auth/step-up/verify. The step-up token is minted
// only after the stored code is redeemed; invalid and expired codes answer
// with distinguishable errors.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
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

	token, err := h.stepUpService.Verify(ctx, userID, req.OTP)
	if err != nil {
		if errors.Is(err, domain.ErrOTPInvalid) {
			httputil.Error(w, http.StatusBadRequest, "Invalid OTP")
			return
		}
		if errors.Is(err, domain.ErrOTPExpired) {
			httputil.Error(w, http.StatusBadRequest, "OTP has expired")
			return
		}
		h.logger.Error("step-up verify failed", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "verification failed")
		return
	}

	httputil.JSON(w, http.StatusOK, VerifyResponse{
		Success: true,
		Token:   token,
	})
}
