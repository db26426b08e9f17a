// Package auth provides signed-token issuance and validation for the
// identity service API.
package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"

	"github.com/webbee/authd/pkg/identity/models"
)

// Claims is the structured content carried inside a signed token.
//
// All authorization-relevant data (the role-name set) is embedded in the
// token itself, so any service holding the shared signing secret can make
// authorization decisions without a session store.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the account identifier (UUID).
	UserID string `json:"uid"`

	// Username is the account's login name. Duplicates the subject claim
	// for consumers that read a flat claim map.
	Username string `json:"username"`

	// Roles is the account's role-name set at issuance time. May be empty.
	Roles []string `json:"roles"`
}

// HasRole returns true if the token carries the specified role.
func (c *Claims) HasRole(roleName string) bool {
	return slices.Contains(c.Roles, roleName)
}

// IsAdmin returns true if the token carries the administrative role.
func (c *Claims) IsAdmin() bool {
	return c.HasRole(models.RoleNameAdmin)
}

// Principal rebuilds the transient principal view from the claims.
func (c *Claims) Principal() *models.Principal {
	return &models.Principal{
		ID:       c.UserID,
		Username: c.Username,
		Roles:    c.Roles,
	}
}
