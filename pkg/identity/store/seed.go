package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/webbee/authd/internal/logger"
	"github.com/webbee/authd/pkg/identity/models"
)

// EnvAdminInitialPassword overrides the bootstrap administrator password.
const EnvAdminInitialPassword = "AUTHD_ADMIN_PASSWORD"

// AdminUsername is the login name of the bootstrap administrator account.
const AdminUsername = "ADMIN"

// EnsureDefaultRoles creates the well-known USER and ADMIN roles if they are
// missing. Roles are reference data; this is the only place the service
// writes to the role table.
func (s *GORMStore) EnsureDefaultRoles(ctx context.Context) error {
	for _, name := range []string{models.RoleNameUser, models.RoleNameAdmin} {
		_, err := s.GetRole(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, models.ErrRoleNotFound) {
			return err
		}
		if _, err := s.CreateRole(ctx, &models.Role{Name: name}); err != nil {
			if errors.Is(err, models.ErrDuplicateRole) {
				continue // concurrent bootstrap
			}
			return fmt.Errorf("failed to create role %s: %w", name, err)
		}
		logger.Info("created default role", "role", name)
	}
	return nil
}

// EnsureAdminUser creates the bootstrap administrator account when it does
// not exist yet. The account is only created if the ADMIN role is present;
// without it there is nothing meaningful to grant.
//
// The password comes from the adminPassword argument or the
// AUTHD_ADMIN_PASSWORD environment variable (env wins). Returns true if the
// account was created.
func (s *GORMStore) EnsureAdminUser(ctx context.Context, adminPassword, adminEmail string) (bool, error) {
	_, err := s.GetUser(ctx, AdminUsername)
	if err == nil {
		return false, nil // admin already exists
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return false, err
	}

	role, err := s.GetRole(ctx, models.RoleNameAdmin)
	if err != nil {
		if errors.Is(err, models.ErrRoleNotFound) {
			logger.Warn("ADMIN role missing, skipping bootstrap admin account")
			return false, nil
		}
		return false, err
	}

	if env := os.Getenv(EnvAdminInitialPassword); env != "" {
		adminPassword = env
	}
	if adminPassword == "" {
		return false, fmt.Errorf("no admin password configured; set %s", EnvAdminInitialPassword)
	}

	hash, err := models.HashPassword(adminPassword)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Username:     AdminUsername,
		Email:        adminEmail,
		PasswordHash: hash,
		Origin:       string(models.OriginPassword),
		Roles:        []models.Role{*role},
	}
	if _, err := s.CreateUser(ctx, admin); err != nil {
		return false, fmt.Errorf("failed to create admin account: %w", err)
	}

	logger.Info("created bootstrap admin account", "username", AdminUsername)
	return true, nil
}
