// Package models defines the persistent data model of the identity service:
// accounts, roles and their relationship, plus the transient Principal
// derived from them at authentication time.
package models

// AllModels returns every model that needs schema migration.
// Used by the store to run GORM AutoMigrate.
func AllModels() []any {
	return []any{
		&User{},
		&Role{},
	}
}
