// Package auth verifies credentials and issues the session tokens kept in the
// record store's session slot.
package auth

import (
	"context"

	"github.com/mmynk/wattcount/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping the credential check without changing the
// service layer code.
type Authenticator interface {
	// Authenticate verifies the credential for username and returns the user.
	// Unknown usernames and wrong credentials both fail with
	// models.ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, credential string) (*models.User, error)

	// ValidateCredential checks a credential before it is stored.
	ValidateCredential(credential string) error

	// HashCredential returns the form of credential to persist.
	HashCredential(credential string) (string, error)
}
