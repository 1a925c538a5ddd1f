// Package middleware wraps caller-facing operations with session resolution,
// role checks and logging.
package middleware

import (
	"context"
	"fmt"

	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/service"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// RoleKey is the context key for storing the authenticated user's role.
	RoleKey contextKey = "role"

	callerKey contextKey = "caller"
)

// ErrMissingToken is returned when an operation needs a session and none was
// presented or stored.
var ErrMissingToken = fmt.Errorf("%w: not logged in", models.ErrAuth)

// Handler is an operation run on behalf of the caller in ctx.
type Handler func(ctx context.Context) error

// Interceptor wraps a Handler.
type Interceptor func(next Handler) Handler

// Chain applies interceptors so that the first one runs outermost.
func Chain(h Handler, interceptors ...Interceptor) Handler {
	for i := len(interceptors) - 1; i >= 0; i-- {
		h = interceptors[i](h)
	}
	return h
}

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetRole extracts the user's role from the context.
func GetRole(ctx context.Context) models.Role {
	role, _ := ctx.Value(RoleKey).(models.Role)
	return role
}

// WithSession stores the session's user in ctx.
func WithSession(ctx context.Context, s *service.Session) context.Context {
	if slot, ok := ctx.Value(callerKey).(*string); ok {
		*slot = s.User.ID
	}
	ctx = context.WithValue(ctx, UserIDKey, s.User.ID)
	return context.WithValue(ctx, RoleKey, s.User.Role)
}

// SessionResolver turns a presented token, or the stored session, into a
// Session.
type SessionResolver interface {
	Resume(ctx context.Context, token string) (*service.Session, error)
	CurrentSession(ctx context.Context) (*service.Session, error)
}

func resolve(ctx context.Context, resolver SessionResolver, token string) (*service.Session, error) {
	if token != "" {
		return resolver.Resume(ctx, token)
	}
	s, err := resolver.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrMissingToken
	}
	return s, nil
}

// RequireAuth resolves the caller from token, falling back to the stored
// session, and adds the user ID and role to the context.
func RequireAuth(resolver SessionResolver, token string) Interceptor {
	return func(next Handler) Handler {
		return func(ctx context.Context) error {
			s, err := resolve(ctx, resolver, token)
			if err != nil {
				return err
			}
			return next(WithSession(ctx, s))
		}
	}
}

// OptionalAuth adds the caller to the context when a valid session exists
// and runs next either way.
func OptionalAuth(resolver SessionResolver, token string) Interceptor {
	return func(next Handler) Handler {
		return func(ctx context.Context) error {
			if s, err := resolve(ctx, resolver, token); err == nil {
				ctx = WithSession(ctx, s)
			}
			return next(ctx)
		}
	}
}

// RequirePrimary rejects callers that are not primary users. It must run
// after RequireAuth.
func RequirePrimary() Interceptor {
	return func(next Handler) Handler {
		return func(ctx context.Context) error {
			if GetRole(ctx) != models.RolePrimary {
				return models.ErrForbidden
			}
			return next(ctx)
		}
	}
}
