package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/webbee/authd/internal/api/auth"
	"github.com/webbee/authd/pkg/identity/service"
	"github.com/webbee/authd/pkg/identity/store"
)

func setupOAuthTest(t *testing.T) (*store.GORMStore, *auth.JWTService, *OAuthHandler) {
	t.Helper()

	s, err := store.New(&store.Config{
		Type: store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{
			Path: ":memory:",
		},
	})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.EnsureDefaultRoles(context.Background()); err != nil {
		t.Fatalf("Failed to seed roles: %v", err)
	}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret: testSecret,
		Issuer: "test",
	})
	if err != nil {
		t.Fatalf("Failed to create JWT service: %v", err)
	}

	handler := NewOAuthHandler(service.NewLinkerService(s, jwtService), nil)
	return s, jwtService, handler
}

func callback(t *testing.T, handler *OAuthHandler, email, name string) *httptest.ResponseRecorder {
	t.Helper()

	query := url.Values{}
	if email != "" {
		query.Set("email", email)
	}
	if name != "" {
		query.Set("name", name)
	}

	req := httptest.NewRequest(http.MethodGet, "/oauth2/callback?"+query.Encode(), nil)
	rec := httptest.NewRecorder()
	handler.Callback(rec, req)
	return rec
}

func TestCallback_RedirectsWithToken(t *testing.T) {
	_, jwtService, handler := setupOAuthTest(t)

	rec := callback(t, handler, "dave@example.com", "Dave Example")
	if rec.Code != http.StatusFound {
		t.Fatalf("Expected 302, got %d: %s", rec.Code, rec.Body.String())
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/redirect?token=") {
		t.Fatalf("Unexpected redirect location %q", location)
	}

	redirectURL, err := url.Parse(location)
	if err != nil {
		t.Fatalf("Failed to parse location: %v", err)
	}
	token := redirectURL.Query().Get("token")
	if token == "" {
		t.Fatal("Redirect carries no token")
	}

	claims, err := jwtService.ParseToken(token)
	if err != nil {
		t.Fatalf("Redirect token does not validate: %v", err)
	}
	if claims.Username != "Dave Example" {
		t.Errorf("Token username %q, want Dave Example", claims.Username)
	}
}

func TestCallback_MissingEmail(t *testing.T) {
	_, _, handler := setupOAuthTest(t)

	rec := callback(t, handler, "", "Dave Example")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestCallback_ConflictWithPasswordAccount(t *testing.T) {
	s, jwtService, handler := setupOAuthTest(t)

	authService := service.NewAuthService(s, jwtService)
	if err := authService.Register(context.Background(), service.RegisterRequest{
		Username: "dave",
		Password: "password",
		Email:    "dave@example.com",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	rec := callback(t, handler, "dave@example.com", "Dave Example")
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", rec.Code)
	}
}

func TestRedirect_EchoesToken(t *testing.T) {
	_, _, handler := setupOAuthTest(t)

	req := httptest.NewRequest(http.MethodGet, "/redirect?token=abc123", nil)
	rec := httptest.NewRecorder()
	handler.Redirect(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "abc123") {
		t.Errorf("Response body %q does not echo the token", rec.Body.String())
	}
}
