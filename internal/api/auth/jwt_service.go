package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/webbee/authd/pkg/identity/models"
)

// Common errors for JWT operations.
var (
	ErrMalformedToken      = errors.New("token cannot be empty")
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrTokenSigningFailed  = errors.New("failed to sign token")
	ErrInvalidSecretLength = errors.New("JWT secret must be at least 32 characters")
)

// JWTConfig holds configuration for JWT token generation.
type JWTConfig struct {
	// Secret is the shared signing secret. Must be at least 32 characters.
	// It is never used directly as key material; the HMAC key is derived
	// from it with SHA-256, normalizing key length and strength.
	Secret string

	// Issuer is the token issuer claim. Default: "authd"
	Issuer string

	// TokenLifetime is the lifetime of issued tokens. Default: 15 minutes.
	TokenLifetime time.Duration
}

// JWTService issues and validates signed bearer tokens.
//
// Issuance and validation are pure computations over the immutable derived
// key, so a single instance is safe for arbitrary concurrent use.
type JWTService struct {
	config     JWTConfig
	signingKey []byte
}

// NewJWTService creates a new JWT service with the given configuration.
func NewJWTService(config JWTConfig) (*JWTService, error) {
	if len(config.Secret) < 32 {
		return nil, ErrInvalidSecretLength
	}

	// Apply defaults
	if config.Issuer == "" {
		config.Issuer = "authd"
	}
	if config.TokenLifetime == 0 {
		config.TokenLifetime = 15 * time.Minute
	}

	key := sha256.Sum256([]byte(config.Secret))

	return &JWTService{
		config:     config,
		signingKey: key[:],
	}, nil
}

// IssueToken creates a signed token for the given principal.
//
// The token carries the login name as subject plus the account id and
// role-name set, and expires after the configured lifetime. An empty role
// set encodes as an empty collection, not an error.
func (s *JWTService) IssueToken(principal *models.Principal) (string, error) {
	now := time.Now()

	roles := principal.Roles
	if roles == nil {
		roles = []string{}
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   principal.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenLifetime)),
		},
		UserID:   principal.ID,
		Username: principal.Username,
		Roles:    roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", ErrTokenSigningFailed
	}

	return signedToken, nil
}

// ParseToken validates a token and returns the claims.
//
// Returns ErrMalformedToken for a blank token, ErrExpiredToken for a token
// past its expiration, and ErrInvalidToken for every other validation
// failure (bad signature, wrong algorithm, unparseable structure).
func (s *JWTService) ParseToken(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMalformedToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// IsExpired reports whether an otherwise-valid token has expired.
//
// This is the non-throwing liveness check: an expired token yields
// (true, nil) instead of an error. Any other validation failure is still
// surfaced as an error.
func (s *JWTService) IsExpired(tokenString string) (bool, error) {
	_, err := s.ParseToken(tokenString)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, ErrExpiredToken) {
		return true, nil
	}
	return false, err
}

// TokenLifetime returns the configured token lifetime.
func (s *JWTService) TokenLifetime() time.Duration {
	return s.config.TokenLifetime
}
