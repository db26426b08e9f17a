// Package store provides persistent storage for accounts and roles.
//
// The default implementation is GORM-backed and supports SQLite for
// single-node deployments and PostgreSQL for HA setups. Schema migration
// runs automatically on startup.
package store

import (
	"context"

	"github.com/webbee/authd/pkg/identity/models"
)

// UserStore defines account persistence operations.
type UserStore interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (string, error)
	ReplaceUserRoles(ctx context.Context, username string, roles []models.Role) error
	ValidateCredentials(ctx context.Context, username, password string) (*models.User, error)
}

// RoleStore defines role reference-data operations.
type RoleStore interface {
	GetRole(ctx context.Context, name string) (*models.Role, error)
	ListRoles(ctx context.Context) ([]*models.Role, error)
	CreateRole(ctx context.Context, role *models.Role) (string, error)
}

// Store combines all persistence interfaces implemented by GORMStore.
type Store interface {
	UserStore
	RoleStore

	// Ping verifies the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases the backing database connection.
	Close() error
}

var _ Store = (*GORMStore)(nil)
