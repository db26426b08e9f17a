package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/webbee/authd/internal/logger"
	"github.com/webbee/authd/pkg/identity/models"
	"github.com/webbee/authd/pkg/identity/store"
)

// RoleService assigns and answers role membership for accounts.
type RoleService struct {
	store store.Store
}

// NewRoleService creates a new RoleService.
func NewRoleService(s store.Store) *RoleService {
	return &RoleService{store: s}
}

// RoleStatus is the typed outcome of a role replacement. An unknown account
// is an expected request-level rejection, carried in Code, not an error.
type RoleStatus struct {
	Code     int      `json:"code"`
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`
}

// ReplaceRoles fully replaces the account's role set with the named roles.
//
// An unknown account yields RoleStatus{Code: 400} with the original login
// name and no role set. A role name with no backing reference record is a
// server-side data fault: it returns models.ErrUnknownRole and leaves the
// account's roles untouched — either every name resolves and the whole
// replacement applies, or nothing changes.
func (s *RoleService) ReplaceRoles(ctx context.Context, username string, roleNames []string) (*RoleStatus, error) {
	if _, err := s.store.GetUser(ctx, username); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return &RoleStatus{
				Code:     http.StatusBadRequest,
				Username: username,
			}, nil
		}
		return nil, err
	}

	// Resolve every requested name before touching the account. Names are
	// a set: duplicates collapse.
	seen := make(map[string]bool, len(roleNames))
	roles := make([]models.Role, 0, len(roleNames))
	for _, name := range roleNames {
		if seen[name] {
			continue
		}
		seen[name] = true

		role, err := s.store.GetRole(ctx, name)
		if err != nil {
			if errors.Is(err, models.ErrRoleNotFound) {
				return nil, fmt.Errorf("%w: %s", models.ErrUnknownRole, name)
			}
			return nil, err
		}
		roles = append(roles, *role)
	}

	if err := s.store.ReplaceUserRoles(ctx, username, roles); err != nil {
		return nil, err
	}

	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}

	logger.InfoCtx(ctx, "roles replaced", "username", username, "roles", names)
	return &RoleStatus{
		Code:     http.StatusOK,
		Username: username,
		Roles:    names,
	}, nil
}

// GetRoles returns the account's current role names, or an empty set when
// the account does not exist. This is a lookup, not an authorization
// decision; callers apply their own policy on top.
func (s *RoleService) GetRoles(ctx context.Context, username string) ([]string, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	return user.GetRoleNames(), nil
}
