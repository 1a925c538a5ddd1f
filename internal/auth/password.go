package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/wattcount/internal/models"
)

// PasswordHasher turns passwords into their stored form and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// PlainPasswords stores passwords unchanged. It keeps data exported by
// older installations loginable.
type PlainPasswords struct{}

func (PlainPasswords) Hash(password string) (string, error) { return password, nil }

func (PlainPasswords) Verify(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// BcryptPasswords stores bcrypt hashes.
type BcryptPasswords struct {
	Cost int
}

func (b BcryptPasswords) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (BcryptPasswords) Verify(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// NewPasswordHasher returns the hasher named by the PASSWORD_HASHING setting.
func NewPasswordHasher(name string) (PasswordHasher, error) {
	switch name {
	case "", "plain":
		return PlainPasswords{}, nil
	case "bcrypt":
		return BcryptPasswords{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hashing %q", name)
	}
}

// UserFinder looks users up by username. Returns nil, nil on a miss.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// PasswordAuthenticator implements password-based authentication.
type PasswordAuthenticator struct {
	users  UserFinder
	hasher PasswordHasher
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(users UserFinder, hasher PasswordHasher) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		users:  users,
		hasher: hasher,
	}
}

// ValidateCredential rejects empty passwords.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if credential == "" {
		return fmt.Errorf("%w: password is required", models.ErrValidation)
	}
	return nil
}

func (a *PasswordAuthenticator) HashCredential(credential string) (string, error) {
	return a.hasher.Hash(credential)
}

// Authenticate verifies the username and password. Deactivated accounts are
// reported only after the password matched.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, credential string) (*models.User, error) {
	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !a.hasher.Verify(user.Password, credential) {
		return nil, models.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, models.ErrAccountDeactivated
	}
	return user, nil
}
