package models

import (
	"fmt"
	"time"
)

// Origin records how an account was created: with a password or through
// a federated identity provider. It is fixed at creation and never changes.
type Origin string

const (
	// OriginPassword is a locally registered account with a password hash.
	OriginPassword Origin = "password"
	// OriginFederated is an account created from a third-party identity
	// assertion. It has no password hash.
	OriginFederated Origin = "federated"
)

// IsValid checks if the origin is a known Origin value.
func (o Origin) IsValid() bool {
	return o == OriginPassword || o == OriginFederated
}

// User represents an account in the identity service.
//
// Login name and email are each globally unique. Password-based accounts
// carry a bcrypt hash; federated accounts have an empty hash and can only
// authenticate through their identity provider.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;size:255" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string    `json:"-"`
	Origin       string    `gorm:"not null;default:password;size:50" json:"origin"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Many-to-many relationship with roles
	Roles []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// GetRoleNames returns a slice of role names assigned to the user.
func (u *User) GetRoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = r.Name
	}
	return names
}

// HasRole checks if the user has the specified role.
func (u *User) HasRole(roleName string) bool {
	for _, r := range u.Roles {
		if r.Name == roleName {
			return true
		}
	}
	return false
}

// IsFederated checks if the account was created from a federated identity.
func (u *User) IsFederated() bool {
	return u.Origin == string(OriginFederated)
}

// GetOrigin returns the account's origin as an Origin type.
func (u *User) GetOrigin() Origin {
	return Origin(u.Origin)
}

// Validate checks if the user has valid configuration.
func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if u.Origin != "" && !Origin(u.Origin).IsValid() {
		return fmt.Errorf("invalid origin %q", u.Origin)
	}
	if Origin(u.Origin) == OriginPassword && u.PasswordHash == "" {
		return fmt.Errorf("password accounts require a password hash")
	}
	return nil
}
