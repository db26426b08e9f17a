package store

import (
	"context"

	"github.com/webbee/authd/pkg/identity/models"
)

// GetRole retrieves a role by name. Roles are reference data: request-time
// operations only ever look them up, never create them.
func (s *GORMStore) GetRole(ctx context.Context, name string) (*models.Role, error) {
	return getByField[models.Role](s.db, ctx, "name", name, models.ErrRoleNotFound)
}

// ListRoles retrieves all roles.
func (s *GORMStore) ListRoles(ctx context.Context) ([]*models.Role, error) {
	return listAll[models.Role](s.db, ctx)
}

// CreateRole persists a new role. Only used by startup seeding and tests.
func (s *GORMStore) CreateRole(ctx context.Context, role *models.Role) (string, error) {
	return createWithID(s.db, ctx, role, func(r *models.Role, id string) { r.ID = id }, role.ID, models.ErrDuplicateRole)
}
