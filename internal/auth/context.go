// Package auth orchestrates login, signup and per-request access control
// against the external auth provider and the identity directory.
package auth

import (
	"context"

	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/identity"
)

// AuthUser is the resolved identity attached to a request after token
// validation.
type AuthUser struct {
	ID          string        `json:"id"`
	Email       string        `json:"email"`
	Role        identity.Role `json:"role"`
	DisplayName string        `json:"name"`
}

type userContextKey struct{}

// ContextWithUser stores the resolved user in the context.
func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the resolved user from the context.
func UserFromContext(ctx context.Context) (*AuthUser, bool) {
	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	return user, ok && user != nil
}
