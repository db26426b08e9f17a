package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/webbee/authd/pkg/identity/models"
)

// GetUser retrieves an account by login name with roles preloaded.
func (s *GORMStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	return getByField[models.User](s.db, ctx, "username", username, models.ErrUserNotFound, "Roles")
}

// GetUserByEmail retrieves an account by email with roles preloaded.
func (s *GORMStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return getByField[models.User](s.db, ctx, "email", email, models.ErrUserNotFound, "Roles")
}

// GetUserByID retrieves an account by its identifier with roles preloaded.
func (s *GORMStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return getByField[models.User](s.db, ctx, "id", id, models.ErrUserNotFound, "Roles")
}

// ListUsers retrieves all accounts with roles preloaded.
func (s *GORMStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	return listAll[models.User](s.db, ctx, "Roles")
}

// CreateUser persists a new account. Unique constraint violations on login
// name or email are converted to the matching duplicate error.
func (s *GORMStore) CreateUser(ctx context.Context, user *models.User) (string, error) {
	user.CreatedAt = time.Now()
	return createUser(s.db, ctx, user)
}

// ReplaceUserRoles replaces the account's role set in a single transaction.
// The previous role set is discarded entirely; no merge takes place.
func (s *GORMStore) ReplaceUserRoles(ctx context.Context, username string, roles []models.Role) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			return convertNotFoundError(err, models.ErrUserNotFound)
		}
		return tx.Model(&user).Association("Roles").Replace(roles)
	})
}

// ValidateCredentials verifies a login name/password pair and returns the
// account with roles loaded.
//
// Unknown login names and wrong passwords both produce ErrInvalidCredentials
// so a caller cannot probe which login names exist. This is the only code
// path that inspects the stored password hash.
func (s *GORMStore) ValidateCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if !models.CheckPassword(user.PasswordHash, password) {
		return nil, models.ErrInvalidCredentials
	}

	return user, nil
}
