package auth

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/identity"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/provider"
)

type recordingEnqueuer struct {
	subjects []string
}

func (r *recordingEnqueuer) EnqueueIdentityCleanup(ctx context.Context, subjectID string) error {
	r.subjects = append(r.subjects, subjectID)
	return nil
}

type fixture struct {
	provider  *provider.MemoryProvider
	directory *identity.MemoryDirectory
	cleanup   *recordingEnqueuer
	service   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		provider:  provider.NewMemoryProvider(),
		directory: identity.NewMemoryDirectory(),
		cleanup:   &recordingEnqueuer{},
	}
	f.service = NewService(nil, f.provider, f.directory, nil, f.cleanup)
	return f
}

func (f *fixture) signup(t *testing.T, email, password, nationalID string, role identity.Role) *Result {
	t.Helper()
	res, err := f.service.Signup(context.Background(), SignupInput{
		Email:       email,
		Password:    password,
		NationalID:  nationalID,
		DisplayName: "Test User",
		Role:        role,
	})
	require.NoError(t, err)
	return res
}

func TestLoginSuccess(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "x@y.com", "secret1", "11144477735", identity.RolePatient)

	res, err := f.service.Login(context.Background(), Credentials{
		Identifier:  "x@y.com",
		Password:    "secret1",
		ClaimedRole: identity.RolePatient,
	})
	require.NoError(t, err)
	require.Equal(t, "x@y.com", res.User.Email)
	require.Equal(t, identity.RolePatient, res.User.Role)
	require.NotEmpty(t, res.Token)
}

func TestLoginByNationalID(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "x@y.com", "secret1", "111.444.777-35", identity.RolePatient)

	res, err := f.service.Login(context.Background(), Credentials{
		Identifier:  "111.444.777-35",
		Password:    "secret1",
		ClaimedRole: identity.RolePatient,
	})
	require.NoError(t, err)
	require.Equal(t, "x@y.com", res.User.Email)
}

func TestLoginBadPassword(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "x@y.com", "secret1", "11144477735", identity.RolePatient)

	_, err := f.service.Login(context.Background(), Credentials{
		Identifier:  "x@y.com",
		Password:    "wrong",
		ClaimedRole: identity.RolePatient,
	})
	require.ErrorIs(t, err, ErrBadCredentials)
}

func TestLoginUnknownNationalID(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Login(context.Background(), Credentials{
		Identifier:  "11144477735",
		Password:    "secret1",
		ClaimedRole: identity.RolePatient,
	})
	require.ErrorIs(t, err, ErrBadCredentials)
}

// sessionRecorder wraps a provider and keeps every session it issues, so
// tests can reach tokens that the service never returns to the caller.
type sessionRecorder struct {
	provider.Provider
	sessions []provider.Session
}

func (p *sessionRecorder) SignInWithPassword(ctx context.Context, email, password string) (provider.Session, error) {
	sess, err := p.Provider.SignInWithPassword(ctx, email, password)
	if err == nil {
		p.sessions = append(p.sessions, sess)
	}
	return sess, err
}

func TestLoginRoleMismatchRevokesSession(t *testing.T) {
	ctx := context.Background()
	rec := &sessionRecorder{Provider: provider.NewMemoryProvider()}
	dir := identity.NewMemoryDirectory()
	svc := NewService(nil, rec, dir, nil, nil)

	_, err := svc.Signup(ctx, SignupInput{
		Email:       "x@y.com",
		Password:    "secret1",
		NationalID:  "11144477735",
		DisplayName: "X Y",
		Role:        identity.RolePatient,
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, Credentials{
		Identifier:  "x@y.com",
		Password:    "secret1",
		ClaimedRole: identity.RoleDoctor,
	})
	require.ErrorIs(t, err, ErrUserTypeMismatch)

	// The token issued during the mismatched attempt must be dead: the
	// provider itself has to reject it.
	require.Len(t, rec.sessions, 1)
	_, err = rec.ValidateToken(ctx, rec.sessions[0].AccessToken)
	require.ErrorIs(t, err, provider.ErrRejected)
	_, err = svc.CurrentUser(ctx, rec.sessions[0].AccessToken)
	require.ErrorIs(t, err, ErrTokenInvalid)

	// The account stays usable under the correct role claim.
	res, err := svc.Login(ctx, Credentials{
		Identifier:  "x@y.com",
		Password:    "secret1",
		ClaimedRole: identity.RolePatient,
	})
	require.NoError(t, err)
	require.NotEqual(t, rec.sessions[0].AccessToken, res.Token)
}

func TestLoginFailsClosedOnMissingDirectoryRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Provider account exists, directory record does not.
	_, err := f.provider.SignUp(ctx, "ghost@y.com", "secret1")
	require.NoError(t, err)

	_, err = f.service.Login(ctx, Credentials{
		Identifier:  "ghost@y.com",
		Password:    "secret1",
		ClaimedRole: identity.RolePatient,
	})
	require.ErrorIs(t, err, ErrBadCredentials)
}

func TestSignupDirectoryFailureCompensates(t *testing.T) {
	f := newFixture(t)
	f.directory.FailInserts(true)

	_, err := f.service.Signup(context.Background(), SignupInput{
		Email:       "x@y.com",
		Password:    "secret1",
		NationalID:  "11144477735",
		DisplayName: "X Y",
		Role:        identity.RolePatient,
	})
	require.ErrorIs(t, err, ErrProfileCreation)
	require.Len(t, f.cleanup.subjects, 1)

	// The session issued during the failed signup was signed out.
	_, err = f.service.CurrentUser(context.Background(), "nonexistent")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "x@y.com", "secret1", "11144477735", identity.RolePatient)

	_, err := f.service.Signup(context.Background(), SignupInput{
		Email:       "x@y.com",
		Password:    "other99",
		NationalID:  "52998224725",
		DisplayName: "Other",
		Role:        identity.RolePatient,
	})
	require.ErrorIs(t, err, ErrAccountExists)
}

func TestSignupNormalizesInputs(t *testing.T) {
	f := newFixture(t)
	res := f.signup(t, "  X@Y.COM ", "secret1", "111.444.777-35", identity.RoleDoctor)
	require.Equal(t, "x@y.com", res.User.Email)

	record, err := f.directory.FindByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	require.Equal(t, "11144477735", record.NationalID)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	f := newFixture(t)
	res := f.signup(t, "x@y.com", "secret1", "11144477735", identity.RolePatient)

	require.NoError(t, f.service.Logout(context.Background(), res.Token))

	_, err := f.service.CurrentUser(context.Background(), res.Token)
	require.ErrorIs(t, err, ErrTokenInvalid)

	require.ErrorIs(t, f.service.Logout(context.Background(), res.Token), ErrTokenInvalid)
}

func TestProviderOutageSurfaces(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "x@y.com", "secret1", "11144477735", identity.RolePatient)
	f.provider.SetUnavailable(true)

	_, err := f.service.Login(context.Background(), Credentials{
		Identifier:  "x@y.com",
		Password:    "secret1",
		ClaimedRole: identity.RolePatient,
	})
	require.ErrorIs(t, err, provider.ErrUnavailable)
}

func TestTokenCachePurgedOnRevocation(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewTokenCache(redisClient, 0)

	p := provider.NewMemoryProvider()
	dir := identity.NewMemoryDirectory()
	svc := NewService(nil, p, dir, cache, nil)

	res, err := svc.Signup(context.Background(), SignupInput{
		Email:       "x@y.com",
		Password:    "secret1",
		NationalID:  "11144477735",
		DisplayName: "X Y",
		Role:        identity.RolePatient,
	})
	require.NoError(t, err)

	// Warm the cache, then log out: the cached entry must not outlive the
	// revocation.
	_, err = svc.CurrentUser(context.Background(), res.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background(), res.Token))

	_, err = svc.CurrentUser(context.Background(), res.Token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}
