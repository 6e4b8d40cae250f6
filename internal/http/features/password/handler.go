package password

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/valumind/auth/internal/httputil"
	"github.com/valumind/auth/internal/validate"
	"github.com/valumind/auth/pkg/auth"
	"github.com/valumind/auth/pkg/domain"
)

// Handler handles password authentication endpoints.
type Handler struct {
	logger          *slog.Logger
	passwordService *auth.PasswordService
	tokenService    *auth.TokenService
}

// NewHandler creates a new password handler.
func NewHandler(logger *slog.Logger, passwordService *auth.PasswordService, tokenService *auth.TokenService) *Handler {
	return &Handler{
		logger:          logger,
		passwordService: passwordService,
		tokenService:    tokenService,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Success bool              `json:"success"`
	Token   string            `json:"token"`
	User    domain.PublicUser `json:"user"`
}

// Login handles POST /v1/auth/login. Unknown email and wrong password
// answer with the same body so the response does not leak account
// existence.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.passwordService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			httputil.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error("authentication failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := h.tokenService.IssueStandard(user.ID)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	httputil.JSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Token:   token,
		User:    user.Public(),
	})
}
