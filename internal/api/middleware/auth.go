// Package middleware provides HTTP middleware for the identity service API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/webbee/authd/internal/api/auth"
	"github.com/webbee/authd/internal/logger"
	"github.com/webbee/authd/pkg/metrics"
)

// Context key type for storing claims
type contextKey string

const claimsContextKey contextKey = "claims"

// GetClaimsFromContext retrieves JWT claims from the request context.
// Returns nil if no claims are present.
//
// This should only be called from handlers behind the JWTAuth middleware;
// on routes without it, the result is always nil.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// WithClaims stores claims in the context. Exposed for handler tests.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// extractBearerToken extracts the token from a Bearer Authorization header.
// Returns the token string and true if successful, or empty string and false if not.
func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	return parts[1], true
}

// JWTAuth is a middleware that validates Bearer tokens in the Authorization header.
// If valid, the claims are stored in the request context and the authenticated
// username is attached to the request's log context.
// If invalid, expired, or missing, returns 401 Unauthorized.
//
// Each validation attempt is counted by outcome. The metrics argument may be
// nil when metrics are disabled.
func JWTAuth(jwtService *auth.JWTService, m *metrics.AuthMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractBearerToken(r)
			if !ok {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ParseToken(tokenString)
			if err != nil {
				m.RecordTokenValidation(metrics.OutcomeFailure)
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}
			m.RecordTokenValidation(metrics.OutcomeSuccess)

			if lc := logger.FromContext(r.Context()); lc != nil {
				lc.Username = claims.Username
			}

			ctx := WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin is a middleware that blocks callers whose token does not
// carry the administrative role. Must be used after JWTAuth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			if !claims.IsAdmin() {
				http.Error(w, "Admin access required", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
