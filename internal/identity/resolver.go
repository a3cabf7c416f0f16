package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/cpf"
)

// ErrMalformedIdentifier indicates the login identifier is neither an email
// address nor an 11-digit national id.
var ErrMalformedIdentifier = errors.New("identity: malformed login identifier")

// Resolver maps a login identifier (email or national id) to the account
// email used for authentication.
type Resolver struct {
	directory Directory
}

// NewResolver constructs a Resolver backed by the given directory.
func NewResolver(directory Directory) *Resolver {
	return &Resolver{directory: directory}
}

// Resolve normalizes the identifier and returns the account email.
// Email identifiers are normalized locally without touching the directory.
// National ids are cleaned and looked up by their normalized form; the full
// checksum is not re-verified here since it was enforced at registration.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (string, error) {
	if strings.Contains(identifier, "@") {
		return strings.ToLower(strings.TrimSpace(identifier)), nil
	}
	digits := cpf.Clean(identifier)
	if len(digits) != 11 {
		return "", ErrMalformedIdentifier
	}
	record, err := r.directory.FindByNationalID(ctx, digits)
	if err != nil {
		return "", err
	}
	return record.Email, nil
}
