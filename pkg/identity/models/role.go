package models

// Well-known role names. Roles are reference data: the service looks them
// up by name and never invents new ones at request time.
const (
	// RoleNameUser is the default role granted on registration.
	RoleNameUser = "USER"
	// RoleNameAdmin gates role management and cross-account lookups.
	RoleNameAdmin = "ADMIN"
)

// Role is a named permission bucket referenced by accounts.
type Role struct {
	ID   string `gorm:"primaryKey;size:36" json:"id"`
	Name string `gorm:"uniqueIndex;not null;size:100" json:"name"`
}

// TableName returns the table name for Role.
func (Role) TableName() string {
	return "roles"
}
