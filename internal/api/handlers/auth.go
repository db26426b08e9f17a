package handlers

import (
	"errors"
	"net/http"

	"github.com/webbee/authd/internal/logger"
	"github.com/webbee/authd/pkg/identity/models"
	"github.com/webbee/authd/pkg/identity/service"
	"github.com/webbee/authd/pkg/metrics"
)

// AuthHandler handles registration and credential login endpoints.
type AuthHandler struct {
	authService *service.AuthService
	metrics     *metrics.AuthMetrics
}

// NewAuthHandler creates a new AuthHandler. The metrics argument may be nil
// when metrics are disabled.
func NewAuthHandler(authService *service.AuthService, m *metrics.AuthMetrics) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		metrics:     m,
	}
}

// SignUpRequest is the registration request body.
type SignUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// SignInRequest is the credential login request body.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthStatusResponse is the status envelope returned by the auth endpoints.
// Token is only set on successful login.
type AuthStatusResponse struct {
	Code  int    `json:"code"`
	Token string `json:"token,omitempty"`
}

// SignUp handles PUT /auth/signup.
//
// Returns 200 with {"code": 200} on success. Every expected rejection
// (malformed email, taken login name, taken email) collapses into a bare
// 400 envelope so the response does not reveal which field collided.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.metrics.RecordRegistration(metrics.OutcomeFailure)
		WriteJSON(w, http.StatusBadRequest, &AuthStatusResponse{Code: http.StatusBadRequest})
		return
	}

	err := h.authService.Register(r.Context(), service.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidEmail),
			errors.Is(err, models.ErrDuplicateLogin),
			errors.Is(err, models.ErrDuplicateEmail):
			h.metrics.RecordRegistration(metrics.OutcomeFailure)
			WriteJSON(w, http.StatusBadRequest, &AuthStatusResponse{Code: http.StatusBadRequest})
		default:
			logger.ErrorCtx(r.Context(), "registration failed", "error", err)
			h.metrics.RecordRegistration(metrics.OutcomeFailure)
			InternalServerError(w, "Registration failed")
		}
		return
	}

	h.metrics.RecordRegistration(metrics.OutcomeSuccess)
	WriteJSONOK(w, &AuthStatusResponse{Code: http.StatusOK})
}

// SignIn handles POST /auth/signin.
//
// On success returns 200 with {"code": 200, "token": "..."} and mirrors the
// token in an Authorization response header. Unknown login names and wrong
// passwords both return a bare 403 envelope; an unreadable body is a 400, so
// 403 always means the credentials themselves were rejected.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteJSON(w, http.StatusBadRequest, &AuthStatusResponse{Code: http.StatusBadRequest})
		return
	}

	principal, token, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			h.metrics.RecordLogin(metrics.OutcomeFailure)
			WriteJSON(w, http.StatusForbidden, &AuthStatusResponse{Code: http.StatusForbidden})
			return
		}
		logger.ErrorCtx(r.Context(), "login failed", "error", err)
		h.metrics.RecordLogin(metrics.OutcomeFailure)
		InternalServerError(w, "Login failed")
		return
	}

	logger.InfoCtx(r.Context(), "login succeeded", "username", principal.Username)
	h.metrics.RecordLogin(metrics.OutcomeSuccess)

	w.Header().Set("Authorization", "Bearer "+token)
	WriteJSONOK(w, &AuthStatusResponse{Code: http.StatusOK, Token: token})
}
