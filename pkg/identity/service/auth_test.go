package service

import (
	"context"
	"errors"
	"testing"

	"github.com/webbee/authd/internal/api/auth"
	"github.com/webbee/authd/pkg/identity/models"
	"github.com/webbee/authd/pkg/identity/store"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

func setupStore(t *testing.T) *store.GORMStore {
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
	return s
}

func newJWTService(t *testing.T) *auth.JWTService {
	t.Helper()

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret: testSecret,
		Issuer: "test",
	})
	if err != nil {
		t.Fatalf("Failed to create JWT service: %v", err)
	}
	return jwtService
}

func setupAuthService(t *testing.T) (*store.GORMStore, *AuthService) {
	t.Helper()

	s := setupStore(t)
	return s, NewAuthService(s, newJWTService(t))
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Username: "alice",
		Password: "s3cret-password",
		Email:    "alice@example.com",
	}
}

func TestRegister_Success(t *testing.T) {
	s, svc := setupAuthService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := s.GetUser(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Unexpected email %q", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "s3cret-password" {
		t.Error("Password was not hashed")
	}
	if user.IsFederated() {
		t.Error("Registered account should be password-based")
	}

	names := user.GetRoleNames()
	if len(names) != 1 || names[0] != models.RoleNameUser {
		t.Errorf("Expected default USER role, got %v", names)
	}
}

func TestRegister_EmailValidation(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"plain address", "bob@example.com", false},
		{"subdomain", "bob@mail.example.co.uk", false},
		{"plus tag", "bob+tag@example.com", false},
		{"surrounding whitespace", "  bob@example.com  ", false},
		{"empty", "", true},
		{"missing at", "bobexample.com", true},
		{"missing domain dot", "bob@example", true},
		{"one letter tld", "bob@example.c", true},
		{"spaces inside", "bo b@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc := setupAuthService(t)

			err := svc.Register(context.Background(), RegisterRequest{
				Username: "bob",
				Password: "password",
				Email:    tt.email,
			})
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidEmail) {
					t.Errorf("Expected ErrInvalidEmail, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestRegister_EmailStoredVerbatim(t *testing.T) {
	s, svc := setupAuthService(t)
	ctx := context.Background()

	req := validRegistration()
	req.Email = " alice@example.com "
	if err := svc.Register(ctx, req); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := s.GetUser(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user.Email != " alice@example.com " {
		t.Errorf("Email should be stored as given, got %q", user.Email)
	}
}

func TestRegister_DuplicateLogin(t *testing.T) {
	_, svc := setupAuthService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}

	req := validRegistration()
	req.Email = "other@example.com"
	if err := svc.Register(ctx, req); !errors.Is(err, models.ErrDuplicateLogin) {
		t.Errorf("Expected ErrDuplicateLogin, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	_, svc := setupAuthService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}

	req := validRegistration()
	req.Username = "bob"
	if err := svc.Register(ctx, req); !errors.Is(err, models.ErrDuplicateEmail) {
		t.Errorf("Expected ErrDuplicateEmail, got %v", err)
	}
}

func TestRegister_CheckOrder(t *testing.T) {
	// A request that is wrong in several ways reports the email format
	// problem first, then the login collision.
	_, svc := setupAuthService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}

	err := svc.Register(ctx, RegisterRequest{
		Username: "alice",
		Password: "password",
		Email:    "not-an-email",
	})
	if !errors.Is(err, models.ErrInvalidEmail) {
		t.Errorf("Expected ErrInvalidEmail to win, got %v", err)
	}

	err = svc.Register(ctx, RegisterRequest{
		Username: "alice",
		Password: "password",
		Email:    "alice@example.com",
	})
	if !errors.Is(err, models.ErrDuplicateLogin) {
		t.Errorf("Expected ErrDuplicateLogin before ErrDuplicateEmail, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	_, svc := setupAuthService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	principal, token, err := svc.Login(ctx, "alice", "s3cret-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if principal.Username != "alice" {
		t.Errorf("Unexpected principal %q", principal.Username)
	}
	if token == "" {
		t.Error("Expected a signed token")
	}

	jwtService := newJWTService(t)
	claims, err := jwtService.ParseToken(token)
	if err != nil {
		t.Fatalf("Issued token does not validate: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("Token username %q, want alice", claims.Username)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != models.RoleNameUser {
		t.Errorf("Token roles %v, want [USER]", claims.Roles)
	}
}

func TestLogin_FailureIsUndifferentiated(t *testing.T) {
	_, svc := setupAuthService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "nobody", "s3cret-password"},
		{"wrong password", "alice", "wrong"},
		{"empty password", "alice", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(ctx, tt.username, tt.password)
			if !errors.Is(err, models.ErrInvalidCredentials) {
				t.Errorf("Expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestLogin_FederatedAccountCannotUsePassword(t *testing.T) {
	s, svc := setupAuthService(t)
	ctx := context.Background()

	// Federated accounts have no password hash at all.
	_, err := s.CreateUser(ctx, &models.User{
		Username: "carol",
		Email:    "carol@example.com",
		Origin:   string(models.OriginFederated),
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, "carol", ""); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for empty hash, got %v", err)
	}
}
