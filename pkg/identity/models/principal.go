package models

import "slices"

// Principal is the resolved, authenticated identity for one login or token
// validation event. It is never persisted; it is rebuilt from the account
// store on each login and embedded into token claims.
type Principal struct {
	// ID is the account identifier (UUID).
	ID string

	// Username is the account's login name.
	Username string

	// Email is the account's email address.
	Email string

	// Roles is the account's role-name set at the moment of authentication.
	// Order is not significant. May be empty.
	Roles []string
}

// HasRole checks if the principal carries the specified role.
func (p *Principal) HasRole(roleName string) bool {
	return slices.Contains(p.Roles, roleName)
}

// IsAdmin checks if the principal carries the administrative role.
func (p *Principal) IsAdmin() bool {
	return p.HasRole(RoleNameAdmin)
}

// PrincipalFromUser builds a Principal from an account with its roles loaded.
func PrincipalFromUser(u *User) *Principal {
	return &Principal{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    u.GetRoleNames(),
	}
}
