package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"

	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/cpf"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/identity"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/provider"
)

// Sentinel errors surfaced by the authenticator.
var (
	// ErrBadCredentials is the generic credential failure. It deliberately
	// never distinguishes unknown emails from wrong passwords.
	ErrBadCredentials = errors.New("invalid credentials")
	// ErrUserTypeMismatch indicates the claimed role does not match the
	// directory role. The just-issued session has already been revoked.
	ErrUserTypeMismatch = errors.New("incorrect user type")
	// ErrAccountExists indicates the email or national id is taken.
	ErrAccountExists = errors.New("account already registered")
	// ErrProfileCreation indicates the directory insert failed after the
	// provider identity was created; compensation has been scheduled.
	ErrProfileCreation = errors.New("profile creation failed")
	// ErrTokenInvalid indicates the bearer token was rejected.
	ErrTokenInvalid = errors.New("invalid or expired token")
)

// CleanupEnqueuer schedules removal of an orphaned provider identity.
type CleanupEnqueuer interface {
	EnqueueIdentityCleanup(ctx context.Context, subjectID string) error
}

// Service wraps the login, signup and token-resolution business rules.
type Service struct {
	logger    *slog.Logger
	provider  provider.Provider
	directory identity.Directory
	resolver  *identity.Resolver
	cache     *TokenCache
	cleanup   CleanupEnqueuer
	group     singleflight.Group
}

// NewService constructs a Service. cache and cleanup may be nil.
func NewService(logger *slog.Logger, p provider.Provider, directory identity.Directory, cache *TokenCache, cleanup CleanupEnqueuer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:    logger,
		provider:  p,
		directory: directory,
		resolver:  identity.NewResolver(directory),
		cache:     cache,
		cleanup:   cleanup,
	}
}

// Credentials are the login inputs after schema validation.
type Credentials struct {
	Identifier  string
	Password    string
	ClaimedRole identity.Role
}

// Result is the composed identity plus session token returned by both Login
// and Signup.
type Result struct {
	User  AuthUser
	Token string
}

// Login resolves the identifier, verifies credentials with the provider and
// enforces that the claimed role matches the directory role. Any role-claim
// failure revokes the just-issued session before returning.
func (s *Service) Login(ctx context.Context, in Credentials) (*Result, error) {
	email, err := s.resolver.Resolve(ctx, in.Identifier)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	sess, err := s.provider.SignInWithPassword(ctx, email, in.Password)
	if err != nil {
		if errors.Is(err, provider.ErrRejected) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	record, err := s.directory.FindByID(ctx, sess.SubjectID)
	if err != nil {
		// Fail closed: without the directory record the actual role is
		// unknown, so the claimed role cannot be trusted.
		s.logger.Error("directory lookup failed after sign-in, revoking session",
			slog.String("subject", sess.SubjectID), slog.Any("error", err))
		s.revoke(ctx, sess.AccessToken)
		if errors.Is(err, identity.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if record.Role != in.ClaimedRole {
		s.logger.Warn("role claim mismatch, revoking session",
			slog.String("subject", sess.SubjectID),
			slog.String("claimed", string(in.ClaimedRole)),
			slog.String("actual", string(record.Role)))
		s.revoke(ctx, sess.AccessToken)
		return nil, ErrUserTypeMismatch
	}

	return &Result{
		User: AuthUser{
			ID:          record.ID,
			Email:       record.Email,
			Role:        record.Role,
			DisplayName: record.DisplayName,
		},
		Token: sess.AccessToken,
	}, nil
}

// SignupInput carries the signup fields. NationalID must already have passed
// cpf.Validate.
type SignupInput struct {
	Email       string
	Password    string
	NationalID  string
	DisplayName string
	Role        identity.Role
}

// Signup creates the provider identity, then the directory record. If the
// directory insert fails the new session is signed out and a cleanup task is
// enqueued to delete the orphaned provider identity.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Result, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := norm.NFC.String(strings.TrimSpace(in.DisplayName))

	sess, err := s.provider.SignUp(ctx, email, in.Password)
	if err != nil {
		if errors.Is(err, provider.ErrExists) {
			return nil, ErrAccountExists
		}
		return nil, err
	}

	record := identity.Identity{
		ID:          sess.SubjectID,
		Email:       email,
		NationalID:  cpf.Clean(in.NationalID),
		DisplayName: name,
		Role:        in.Role,
	}
	if err := s.directory.Insert(ctx, record); err != nil {
		s.compensate(ctx, sess)
		if errors.Is(err, identity.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("%w: %v", ErrProfileCreation, err)
	}

	// Staff accounts grant clinic access, keep a trace of their creation.
	if record.Role.Staff() {
		s.logger.Info("staff account registered",
			slog.String("subject", record.ID),
			slog.String("role", string(record.Role)))
	}

	return &Result{
		User: AuthUser{
			ID:          record.ID,
			Email:       record.Email,
			Role:        record.Role,
			DisplayName: record.DisplayName,
		},
		Token: sess.AccessToken,
	}, nil
}

// Logout revokes the session behind the token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if s.cache != nil {
		s.cache.Purge(ctx, token)
	}
	if err := s.provider.SignOut(ctx, token); err != nil {
		if errors.Is(err, provider.ErrRejected) {
			return ErrTokenInvalid
		}
		return err
	}
	return nil
}

// CurrentUser validates the token with the provider and loads the directory
// record. Concurrent validations of the same token are deduplicated, and
// results are cached briefly.
func (s *Service) CurrentUser(ctx context.Context, token string) (*AuthUser, error) {
	if user, ok := s.cache.Get(ctx, token); ok {
		return user, nil
	}
	v, err, _ := s.group.Do(token, func() (any, error) {
		subject, err := s.provider.ValidateToken(ctx, token)
		if err != nil {
			if errors.Is(err, provider.ErrRejected) {
				return nil, ErrTokenInvalid
			}
			return nil, err
		}
		record, err := s.directory.FindByID(ctx, subject)
		if err != nil {
			return nil, err
		}
		user := &AuthUser{
			ID:          record.ID,
			Email:       record.Email,
			Role:        record.Role,
			DisplayName: record.DisplayName,
		}
		if s.cache != nil {
			s.cache.Put(ctx, token, user)
		}
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*AuthUser), nil
}

func (s *Service) revoke(ctx context.Context, token string) {
	if s.cache != nil {
		s.cache.Purge(ctx, token)
	}
	if err := s.provider.SignOut(ctx, token); err != nil {
		s.logger.Error("revoke session", slog.Any("error", err))
	}
}

func (s *Service) compensate(ctx context.Context, sess provider.Session) {
	s.revoke(ctx, sess.AccessToken)
	if s.cleanup == nil {
		s.logger.Error("orphaned provider identity left behind, no cleanup enqueuer configured",
			slog.String("subject", sess.SubjectID))
		return
	}
	if err := s.cleanup.EnqueueIdentityCleanup(ctx, sess.SubjectID); err != nil {
		s.logger.Error("enqueue identity cleanup",
			slog.String("subject", sess.SubjectID), slog.Any("error", err))
	}
}
