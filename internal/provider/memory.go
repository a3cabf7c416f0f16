package provider

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type memoryUser struct {
	subjectID    string
	passwordHash []byte
}

// MemoryProvider is an in-process Provider used by tests and local
// development. Passwords are bcrypt-hashed and tokens are random uuids held
// in a revocable set, so revocation semantics match the hosted provider.
type MemoryProvider struct {
	mu          sync.Mutex
	users       map[string]memoryUser // keyed by email
	tokens      map[string]string     // token -> subject id
	unavailable bool
}

// NewMemoryProvider constructs an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		users:  make(map[string]memoryUser),
		tokens: make(map[string]string),
	}
}

// SetUnavailable makes every subsequent call fail with ErrUnavailable,
// simulating a provider outage.
func (p *MemoryProvider) SetUnavailable(down bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unavailable = down
}

// SignInWithPassword verifies the password and issues a fresh token.
func (p *MemoryProvider) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unavailable {
		return Session{}, ErrUnavailable
	}
	user, ok := p.users[email]
	if !ok {
		return Session{}, ErrRejected
	}
	if err := bcrypt.CompareHashAndPassword(user.passwordHash, []byte(password)); err != nil {
		return Session{}, ErrRejected
	}
	return p.issueLocked(user.subjectID), nil
}

// SignUp registers a new identity and issues its initial token.
func (p *MemoryProvider) SignUp(ctx context.Context, email, password string) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unavailable {
		return Session{}, ErrUnavailable
	}
	if _, ok := p.users[email]; ok {
		return Session{}, ErrExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return Session{}, err
	}
	user := memoryUser{subjectID: uuid.NewString(), passwordHash: hash}
	p.users[email] = user
	return p.issueLocked(user.subjectID), nil
}

// ValidateToken resolves a live token to its subject id.
func (p *MemoryProvider) ValidateToken(ctx context.Context, token string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unavailable {
		return "", ErrUnavailable
	}
	subject, ok := p.tokens[token]
	if !ok {
		return "", ErrRejected
	}
	return subject, nil
}

// SignOut revokes the given token.
func (p *MemoryProvider) SignOut(ctx context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unavailable {
		return ErrUnavailable
	}
	if _, ok := p.tokens[token]; !ok {
		return ErrRejected
	}
	delete(p.tokens, token)
	return nil
}

// DeleteUser removes an identity and revokes all of its tokens.
func (p *MemoryProvider) DeleteUser(ctx context.Context, subjectID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unavailable {
		return ErrUnavailable
	}
	for email, user := range p.users {
		if user.subjectID == subjectID {
			delete(p.users, email)
		}
	}
	for token, subject := range p.tokens {
		if subject == subjectID {
			delete(p.tokens, token)
		}
	}
	return nil
}

func (p *MemoryProvider) issueLocked(subjectID string) Session {
	token := uuid.NewString()
	p.tokens[token] = subjectID
	return Session{SubjectID: subjectID, AccessToken: token}
}

var _ Provider = (*MemoryProvider)(nil)
