package service

import (
	"context"
	"errors"
	"testing"

	"github.com/webbee/authd/pkg/identity/models"
	"github.com/webbee/authd/pkg/identity/store"
)

func setupLinker(t *testing.T) (*store.GORMStore, *LinkerService) {
	t.Helper()

	s := setupStore(t)
	return s, NewLinkerService(s, newJWTService(t))
}

func TestLink_MissingEmail(t *testing.T) {
	_, linker := setupLinker(t)

	_, err := linker.Link(context.Background(), "", "Dave Example")
	if !errors.Is(err, models.ErrMissingEmail) {
		t.Errorf("Expected ErrMissingEmail, got %v", err)
	}
}

func TestLink_CreatesFederatedAccount(t *testing.T) {
	s, linker := setupLinker(t)
	ctx := context.Background()

	token, err := linker.Link(ctx, "dave@example.com", "Dave Example")
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	if token == "" {
		t.Fatal("Expected a signed token")
	}

	// The display name is used verbatim as the login name.
	user, err := s.GetUser(ctx, "Dave Example")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if !user.IsFederated() {
		t.Error("Expected a federated account")
	}
	if user.PasswordHash != "" {
		t.Error("Federated account should have no password hash")
	}
	if user.Email != "dave@example.com" {
		t.Errorf("Unexpected email %q", user.Email)
	}

	names := user.GetRoleNames()
	if len(names) != 1 || names[0] != models.RoleNameUser {
		t.Errorf("Expected default USER role, got %v", names)
	}

	claims, err := newJWTService(t).ParseToken(token)
	if err != nil {
		t.Fatalf("Issued token does not validate: %v", err)
	}
	if claims.Username != "Dave Example" {
		t.Errorf("Token username %q, want Dave Example", claims.Username)
	}
}

func TestLink_ReusesFederatedAccount(t *testing.T) {
	s, linker := setupLinker(t)
	ctx := context.Background()

	if _, err := linker.Link(ctx, "dave@example.com", "Dave Example"); err != nil {
		t.Fatalf("First link failed: %v", err)
	}

	// Linking again, even with a different display name, reuses the account.
	token, err := linker.Link(ctx, "dave@example.com", "David E.")
	if err != nil {
		t.Fatalf("Second link failed: %v", err)
	}
	if token == "" {
		t.Fatal("Expected a signed token")
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("Expected a single account, got %d", len(users))
	}
	if users[0].Username != "Dave Example" {
		t.Errorf("Account login name changed to %q", users[0].Username)
	}
}

func TestLink_ConflictsWithPasswordAccount(t *testing.T) {
	s, linker := setupLinker(t)
	ctx := context.Background()

	authService := NewAuthService(s, newJWTService(t))
	if err := authService.Register(ctx, RegisterRequest{
		Username: "dave",
		Password: "password",
		Email:    "dave@example.com",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := linker.Link(ctx, "dave@example.com", "Dave Example")
	if !errors.Is(err, models.ErrIdentityConflict) {
		t.Fatalf("Expected ErrIdentityConflict, got %v", err)
	}

	// The conflict must not create a second account or touch the existing one.
	users, listErr := s.ListUsers(ctx)
	if listErr != nil {
		t.Fatalf("ListUsers failed: %v", listErr)
	}
	if len(users) != 1 {
		t.Errorf("Expected a single account, got %d", len(users))
	}
	if users[0].IsFederated() {
		t.Error("Existing password account was mutated")
	}
}
