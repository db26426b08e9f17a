package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/webbee/authd/internal/api/auth"
	"github.com/webbee/authd/pkg/identity/service"
	"github.com/webbee/authd/pkg/identity/store"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

func setupAuthTest(t *testing.T) (*store.GORMStore, *auth.JWTService, *AuthHandler) {
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

	handler := NewAuthHandler(service.NewAuthService(s, jwtService), nil)
	return s, jwtService, handler
}

func signUp(t *testing.T, handler *AuthHandler, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/auth/signup", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler.SignUp(rec, req)
	return rec
}

func signIn(t *testing.T, handler *AuthHandler, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/signin", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler.SignIn(rec, req)
	return rec
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) AuthStatusResponse {
	t.Helper()

	var resp AuthStatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func TestSignUp_Success(t *testing.T) {
	_, _, handler := setupAuthTest(t)

	rec := signUp(t, handler, SignUpRequest{
		Username: "alice",
		Password: "s3cret-password",
		Email:    "alice@example.com",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decodeStatus(t, rec); resp.Code != http.StatusOK {
		t.Errorf("Expected envelope code 200, got %d", resp.Code)
	}
}

func TestSignUp_RejectionsAreUndifferentiated(t *testing.T) {
	_, _, handler := setupAuthTest(t)

	rec := signUp(t, handler, SignUpRequest{
		Username: "alice",
		Password: "s3cret-password",
		Email:    "alice@example.com",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Seed registration failed: %d", rec.Code)
	}

	tests := []struct {
		name string
		req  SignUpRequest
	}{
		{"invalid email", SignUpRequest{Username: "bob", Password: "pw", Email: "nope"}},
		{"duplicate login", SignUpRequest{Username: "alice", Password: "pw", Email: "bob@example.com"}},
		{"duplicate email", SignUpRequest{Username: "bob", Password: "pw", Email: "alice@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := signUp(t, handler, tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", rec.Code)
			}
			resp := decodeStatus(t, rec)
			if resp.Code != http.StatusBadRequest {
				t.Errorf("Expected envelope code 400, got %d", resp.Code)
			}
			if resp.Token != "" {
				t.Error("Rejection must not carry a token")
			}
		})
	}
}

func TestSignUp_MalformedBody(t *testing.T) {
	_, _, handler := setupAuthTest(t)

	req := httptest.NewRequest(http.MethodPut, "/auth/signup", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.SignUp(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestSignIn_Success(t *testing.T) {
	_, jwtService, handler := setupAuthTest(t)

	if rec := signUp(t, handler, SignUpRequest{
		Username: "alice",
		Password: "s3cret-password",
		Email:    "alice@example.com",
	}); rec.Code != http.StatusOK {
		t.Fatalf("Registration failed: %d", rec.Code)
	}

	rec := signIn(t, handler, SignInRequest{Username: "alice", Password: "s3cret-password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeStatus(t, rec)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected envelope code 200, got %d", resp.Code)
	}
	if resp.Token == "" {
		t.Fatal("Expected a token in the response")
	}

	// The token is mirrored in the Authorization response header.
	header := rec.Header().Get("Authorization")
	if header != "Bearer "+resp.Token {
		t.Errorf("Authorization header %q does not mirror the token", header)
	}

	claims, err := jwtService.ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("Returned token does not validate: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("Token username %q, want alice", claims.Username)
	}
}

func TestSignIn_Failure(t *testing.T) {
	_, _, handler := setupAuthTest(t)

	if rec := signUp(t, handler, SignUpRequest{
		Username: "alice",
		Password: "s3cret-password",
		Email:    "alice@example.com",
	}); rec.Code != http.StatusOK {
		t.Fatalf("Registration failed: %d", rec.Code)
	}

	tests := []struct {
		name string
		req  SignInRequest
	}{
		{"unknown user", SignInRequest{Username: "nobody", Password: "s3cret-password"}},
		{"wrong password", SignInRequest{Username: "alice", Password: "wrong"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := signIn(t, handler, tt.req)
			if rec.Code != http.StatusForbidden {
				t.Fatalf("Expected 403, got %d", rec.Code)
			}
			resp := decodeStatus(t, rec)
			if resp.Code != http.StatusForbidden {
				t.Errorf("Expected envelope code 403, got %d", resp.Code)
			}
			if resp.Token != "" {
				t.Error("Failed login must not carry a token")
			}
			if rec.Header().Get("Authorization") != "" {
				t.Error("Failed login must not set the Authorization header")
			}
		})
	}
}

func TestSignIn_MalformedBody(t *testing.T) {
	// An unreadable body is a 400, never the 403 credential rejection.
	_, _, handler := setupAuthTest(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/signin", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.SignIn(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if resp := decodeStatus(t, rec); resp.Code != http.StatusBadRequest {
		t.Errorf("Expected envelope code 400, got %d", resp.Code)
	}
}
