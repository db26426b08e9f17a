package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/webbee/authd/internal/api/auth"
	"github.com/webbee/authd/internal/logger"
	"github.com/webbee/authd/pkg/identity/models"
	"github.com/webbee/authd/pkg/identity/store"
)

// LinkerService reconciles a federated identity assertion with the account
// store and mints the post-link token.
type LinkerService struct {
	store      store.Store
	jwtService *auth.JWTService
}

// NewLinkerService creates a new LinkerService.
func NewLinkerService(s store.Store, jwtService *auth.JWTService) *LinkerService {
	return &LinkerService{
		store:      s,
		jwtService: jwtService,
	}
}

// Link reconciles an externally asserted (email, display name) pair with
// the account store and returns a signed token for the resolved account.
//
// The email is required; the display name may be empty and is used verbatim
// as the login name of a newly created account. Resolution:
//
//   - no account with that email: create a federated account (no password
//     hash, default USER role when present) and issue a token for it
//   - existing federated account: reuse it unchanged, no write
//   - existing password account: fail with models.ErrIdentityConflict and
//     perform no mutation and no token issuance
//
// The conflict branch is what keeps a spoofable federated email claim from
// silently taking over a password account.
func (s *LinkerService) Link(ctx context.Context, email, name string) (string, error) {
	if email == "" {
		return "", models.ErrMissingEmail
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if !user.IsFederated() {
			return "", models.ErrIdentityConflict
		}

	case errors.Is(err, models.ErrUserNotFound):
		roles, rerr := s.defaultRoles(ctx)
		if rerr != nil {
			return "", rerr
		}
		if len(roles) == 0 {
			logger.WarnCtx(ctx, "default role missing, linking federated account without roles",
				"email", email, "role", models.RoleNameUser)
		}

		user = &models.User{
			Username: name,
			Email:    email,
			Origin:   string(models.OriginFederated),
			Roles:    roles,
		}
		if _, cerr := s.store.CreateUser(ctx, user); cerr != nil {
			return "", fmt.Errorf("failed to create federated account: %w", cerr)
		}
		logger.InfoCtx(ctx, "federated account created", "username", name, "email", email)

	default:
		return "", err
	}

	token, err := s.jwtService.IssueToken(models.PrincipalFromUser(user))
	if err != nil {
		return "", err
	}

	return token, nil
}

// defaultRoles resolves the default USER role, returning an empty set when
// the role does not exist in the reference data.
func (s *LinkerService) defaultRoles(ctx context.Context) ([]models.Role, error) {
	role, err := s.store.GetRole(ctx, models.RoleNameUser)
	if err != nil {
		if errors.Is(err, models.ErrRoleNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []models.Role{*role}, nil
}
