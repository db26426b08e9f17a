package models

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("Password stored in the clear")
	}

	if !CheckPassword(hash, "s3cret-password") {
		t.Error("Correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("Wrong password accepted")
	}
}

func TestCheckPassword_EmptyHashNeverMatches(t *testing.T) {
	// Federated accounts carry no hash at all; nothing may log into them
	// with a password, not even an empty one.
	if CheckPassword("", "") {
		t.Error("Empty password matched empty hash")
	}
	if CheckPassword("", "anything") {
		t.Error("Password matched empty hash")
	}
}

func TestPrincipalFromUser(t *testing.T) {
	user := &User{
		ID:       "11111111-2222-3333-4444-555555555555",
		Username: "alice",
		Email:    "alice@example.com",
		Roles:    []Role{{Name: RoleNameUser}, {Name: RoleNameAdmin}},
	}

	principal := PrincipalFromUser(user)
	if principal.Username != "alice" {
		t.Errorf("Unexpected username %q", principal.Username)
	}
	if !principal.HasRole(RoleNameUser) || !principal.IsAdmin() {
		t.Errorf("Unexpected roles %v", principal.Roles)
	}
	if principal.HasRole("GHOST") {
		t.Error("HasRole matched a role the principal does not hold")
	}
}
