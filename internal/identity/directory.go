package identity

import (
	"context"
	"errors"
)

// Sentinel errors for directory operations.
var (
	// ErrNotFound indicates no directory record matches the query.
	ErrNotFound = errors.New("identity: not found")
	// ErrDuplicate indicates the email or national id is already registered.
	ErrDuplicate = errors.New("identity: already registered")
)

// Directory is the externally-managed identity store, keyed by provider
// subject id and queryable by normalized national id.
type Directory interface {
	FindByID(ctx context.Context, id string) (*Identity, error)
	FindByNationalID(ctx context.Context, nationalID string) (*Identity, error)
	Insert(ctx context.Context, identity Identity) error
	Delete(ctx context.Context, id string) error
}
