// Package provider abstracts the external authentication provider that owns
// password verification, session tokens and sign-out.
package provider

import (
	"context"
	"errors"
)

// Sentinel errors returned by Provider implementations.
var (
	// ErrRejected indicates the provider refused the credentials or token.
	ErrRejected = errors.New("provider: rejected")
	// ErrExists indicates a signup for an email that is already registered.
	ErrExists = errors.New("provider: email already registered")
	// ErrUnavailable indicates the provider could not be reached in time.
	ErrUnavailable = errors.New("provider: unavailable")
)

// Session is the result of a successful sign-in or signup. AccessToken is an
// opaque bearer credential; its internals are never inspected by this service.
type Session struct {
	SubjectID   string
	AccessToken string
}

// Provider is the capability surface consumed by the authenticator and the
// access control middleware. Every call must honor context cancellation and
// carry a bounded timeout.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, email, password string) (Session, error)
	ValidateToken(ctx context.Context, token string) (subjectID string, err error)
	SignOut(ctx context.Context, token string) error
	// DeleteUser removes a provider identity. Requires admin credentials and
	// is only used by compensating cleanup after failed signups.
	DeleteUser(ctx context.Context, subjectID string) error
}
