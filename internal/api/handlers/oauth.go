package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/webbee/authd/internal/logger"
	"github.com/webbee/authd/pkg/identity/models"
	"github.com/webbee/authd/pkg/identity/service"
	"github.com/webbee/authd/pkg/metrics"
)

// OAuthHandler handles the federated identity callback and the redirect
// landing endpoint it hands the token off to.
type OAuthHandler struct {
	linker  *service.LinkerService
	metrics *metrics.AuthMetrics
}

// NewOAuthHandler creates a new OAuthHandler. The metrics argument may be
// nil when metrics are disabled.
func NewOAuthHandler(linker *service.LinkerService, m *metrics.AuthMetrics) *OAuthHandler {
	return &OAuthHandler{
		linker:  linker,
		metrics: m,
	}
}

// Callback handles GET /oauth2/callback?email=...&name=...
//
// The upstream provider has already authenticated the user; this endpoint
// links the asserted identity to an account and redirects to the landing
// endpoint with the minted token in the query string. A missing email is
// 400; an email already bound to a password account is 409.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	name := r.URL.Query().Get("name")

	token, err := h.linker.Link(r.Context(), email, name)
	if err != nil {
		h.metrics.RecordFederatedLink(metrics.OutcomeFailure)
		switch {
		case errors.Is(err, models.ErrMissingEmail):
			BadRequest(w, "Email is required")
		case errors.Is(err, models.ErrIdentityConflict):
			Conflict(w, "Account with this email already uses password login")
		default:
			logger.ErrorCtx(r.Context(), "federated link failed", "email", email, "error", err)
			InternalServerError(w, "Federated login failed")
		}
		return
	}

	h.metrics.RecordFederatedLink(metrics.OutcomeSuccess)
	http.Redirect(w, r, "/redirect?token="+url.QueryEscape(token), http.StatusFound)
}

// Redirect handles GET /redirect?token=...
//
// The landing endpoint the callback points clients at. It simply echoes the
// token so callers without a frontend can pick it up.
func (h *OAuthHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Success login. Token: %s", token)
}
