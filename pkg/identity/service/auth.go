package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/webbee/authd/internal/api/auth"
	"github.com/webbee/authd/internal/logger"
	"github.com/webbee/authd/pkg/identity/models"
	"github.com/webbee/authd/pkg/identity/store"
)

// emailPattern is the registration email shape: ASCII local and domain
// parts, at least one dot in the domain, a 2+ letter top-level segment.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthService handles registration and credential login.
type AuthService struct {
	store      store.Store
	jwtService *auth.JWTService
}

// NewAuthService creates a new AuthService.
func NewAuthService(s store.Store, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		store:      s,
		jwtService: jwtService,
	}
}

// RegisterRequest carries the inputs for account registration.
type RegisterRequest struct {
	Username string
	Password string
	Email    string
}

// Register validates and creates a new password-based account.
//
// Checks run in order and the first failure wins: email format
// (models.ErrInvalidEmail), duplicate login name (models.ErrDuplicateLogin),
// duplicate email (models.ErrDuplicateEmail). Surrounding whitespace in the
// email is trimmed for the format check only; the email is stored as given.
//
// On success the password is bcrypt-hashed and the account gets the default
// USER role. When that role is missing from the reference data the account
// is still created with no roles at all; this matches the historical
// behavior but leaves the account unable to pass any role check, so it is
// logged loudly.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	if !isEmailValid(req.Email) {
		return models.ErrInvalidEmail
	}

	if _, err := s.store.GetUser(ctx, req.Username); err == nil {
		return models.ErrDuplicateLogin
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return err
	}

	if _, err := s.store.GetUserByEmail(ctx, req.Email); err == nil {
		return models.ErrDuplicateEmail
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return err
	}

	hash, err := models.HashPassword(req.Password)
	if err != nil {
		return err
	}

	roles, err := s.defaultRoles(ctx)
	if err != nil {
		return err
	}
	if len(roles) == 0 {
		logger.WarnCtx(ctx, "default role missing, registering account without roles",
			"username", req.Username, "role", models.RoleNameUser)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Origin:       string(models.OriginPassword),
		Roles:        roles,
	}
	if _, err := s.store.CreateUser(ctx, user); err != nil {
		// The store translates write-time unique violations into the same
		// duplicate errors as the pre-checks, closing the race window.
		return err
	}

	logger.InfoCtx(ctx, "account registered", "username", req.Username)
	return nil
}

// Login verifies a login name/password pair and mints a signed token.
//
// Unknown login names and wrong passwords are indistinguishable to the
// caller: both surface as models.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Principal, string, error) {
	user, err := s.store.ValidateCredentials(ctx, username, password)
	if err != nil {
		return nil, "", err
	}

	principal := models.PrincipalFromUser(user)
	token, err := s.jwtService.IssueToken(principal)
	if err != nil {
		return nil, "", err
	}

	return principal, token, nil
}

// defaultRoles resolves the default USER role, returning an empty set when
// the role does not exist in the reference data.
func (s *AuthService) defaultRoles(ctx context.Context) ([]models.Role, error) {
	role, err := s.store.GetRole(ctx, models.RoleNameUser)
	if err != nil {
		if errors.Is(err, models.ErrRoleNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []models.Role{*role}, nil
}

// isEmailValid checks the email shape. Matching happens on the trimmed
// value; storage keeps the original.
func isEmailValid(email string) bool {
	if email == "" {
		return false
	}
	return emailPattern.MatchString(strings.TrimSpace(email))
}
