package api

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/webbee/authd/internal/api/auth"
	"github.com/webbee/authd/internal/api/handlers"
	apiMiddleware "github.com/webbee/authd/internal/api/middleware"
	"github.com/webbee/authd/internal/logger"
	"github.com/webbee/authd/pkg/identity/service"
	"github.com/webbee/authd/pkg/identity/store"
	"github.com/webbee/authd/pkg/metrics"
)

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe
//   - PUT /auth/signup - Account registration
//   - POST /auth/signin - Credential login
//   - GET /oauth2/callback - Federated identity callback
//   - GET /redirect - Post-login token landing endpoint
//   - PUT /user-roles/save - Role replacement (admin only)
//   - GET /user-roles/{login} - Role lookup (admin or self)
func NewRouter(jwtService *auth.JWTService, identityStore store.Store, m *metrics.AuthMetrics) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	authService := service.NewAuthService(identityStore, jwtService)
	linkerService := service.NewLinkerService(identityStore, jwtService)
	roleService := service.NewRoleService(identityStore)

	healthHandler := handlers.NewHealthHandler(identityStore)
	authHandler := handlers.NewAuthHandler(authService, m)
	oauthHandler := handlers.NewOAuthHandler(linkerService, m)
	roleHandler := handlers.NewRoleHandler(roleService, m)

	// Health routes - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	// Auth routes - unauthenticated
	r.Route("/auth", func(r chi.Router) {
		r.Put("/signup", authHandler.SignUp)
		r.Post("/signin", authHandler.SignIn)
	})

	// Federated identity callback and its landing endpoint - unauthenticated.
	// The upstream provider authenticates before redirecting here.
	r.Get("/oauth2/callback", oauthHandler.Callback)
	r.Get("/redirect", oauthHandler.Redirect)

	// Role administration - authenticated
	r.Route("/user-roles", func(r chi.Router) {
		r.Use(apiMiddleware.JWTAuth(jwtService, m))

		// Self-access allowed - handler does its own authorization
		r.Get("/{login}", roleHandler.Get)

		// Admin-only operations
		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.RequireAdmin())
			r.Put("/save", roleHandler.Save)
		})
	})

	return r
}

// isHealthPath returns true if the request path is a healthcheck endpoint.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}

// clientIP strips the port from a RemoteAddr. RealIP already rewrites
// RemoteAddr to a bare IP when a forwarding header is present.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
//   - Healthcheck requests are logged at DEBUG level to reduce noise
//
// It also attaches a logger.LogContext to the request context so downstream
// *Ctx log calls carry the request id and client IP. JWTAuth fills in the
// username once the caller is authenticated.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		r = r.WithContext(logger.WithContext(r.Context(), &logger.LogContext{
			RequestID: requestID,
			ClientIP:  clientIP(r.RemoteAddr),
		}))

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		}

		// Log healthcheck requests at DEBUG to avoid polluting logs in k8s
		if isHealthPath(r.URL.Path) {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}
