package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnfurniture/internal/apperror"
	"vnfurniture/internal/cache"
	"vnfurniture/internal/models"
	"vnfurniture/internal/store/memory"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) SendWelcome(_ context.Context, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

// flakyCache loses its revocation lookups while down is set.
type flakyCache struct {
	*cache.Memory
	down bool
}

func (c *flakyCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.down {
		return false, errors.New("redis: i/o timeout")
	}
	return c.Memory.Exists(ctx, key)
}

// withFlakyCache rebuilds the fixture service over a cache that can go down.
func (f *fixture) withFlakyCache() *flakyCache {
	fc := &flakyCache{Memory: f.cache}
	f.svc = NewService(f.db.Backend().Users, fc, Options{
		Secret: []byte("test-secret"),
		Now:    func() time.Time { return f.now },
	})
	f.svc.spawn = func(fn func()) { fn() }
	return fc
}

type fixture struct {
	svc    *Service
	db     *memory.DB
	cache  *cache.Memory
	mailer *recordingMailer
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:     memory.New(),
		cache:  cache.NewMemory(),
		mailer: &recordingMailer{},
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.cache.SetClock(clock)
	f.svc = NewService(f.db.Backend().Users, f.cache, Options{
		Secret:      []byte("test-secret"),
		AdminEmails: []string{"Owner@VNFurniture.test"},
		Mailer:      f.mailer,
		Now:         clock,
	})
	f.svc.spawn = func(fn func()) { fn() }
	return f
}

func TestSignUpCreatesCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.SignUp(ctx, "  Ana@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", sess.User.Email)
	assert.Equal(t, models.RoleCustomer, sess.User.Role)
	assert.Empty(t, sess.User.Password)
	assert.NotEmpty(t, sess.AccessToken)
	assert.True(t, f.now.Add(DefaultTokenTTL).Equal(sess.ExpiresAt))
	assert.Equal(t, []string{"ana@example.com"}, f.mailer.sent)
}

func TestSignUpAdminEmail(t *testing.T) {
	f := newFixture(t)
	sess, err := f.svc.SignUp(context.Background(), "owner@vnfurniture.test", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, sess.User.Role)
}

func TestSignUpRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, "not-an-email", "secret1")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, 422))

	_, err = f.svc.SignUp(ctx, "a@b.com", "123")
	require.Error(t, err)
	assert.Equal(t, "Password should be at least 6 characters", apperror.Message(err))

	_, err = f.svc.SignUp(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	_, err = f.svc.SignUp(ctx, "A@B.com", "secret2")
	require.Error(t, err)
	assert.Equal(t, "User already registered", apperror.Message(err))
}

func TestSignInWithPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	sess, err := f.svc.SignInWithPassword(ctx, "ANA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", sess.User.Email)

	_, err = f.svc.SignInWithPassword(ctx, "ana@example.com", "wrong!")
	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", apperror.Message(err))

	_, err = f.svc.SignInWithPassword(ctx, "nobody@example.com", "secret1")
	assert.True(t, apperror.Is(err, 401))
}

func TestSignInCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	for i := 0; i < LoginMaxAttempts; i++ {
		_, err = f.svc.SignInWithPassword(ctx, "ana@example.com", "wrong!")
		assert.True(t, apperror.Is(err, 401))
	}

	_, err = f.svc.SignInWithPassword(ctx, "ana@example.com", "secret1")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, 429))

	f.now = f.now.Add(LoginCooldown + time.Second)
	_, err = f.svc.SignInWithPassword(ctx, "ana@example.com", "secret1")
	assert.NoError(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signed, err := f.svc.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	sess, refreshed, err := f.svc.Session(ctx, signed.AccessToken)
	require.NoError(t, err)
	assert.False(t, refreshed)
	assert.Equal(t, signed.User.ID, sess.User.ID)

	require.NoError(t, f.svc.SignOut(ctx, signed.AccessToken))
	_, _, err = f.svc.Session(ctx, signed.AccessToken)
	assert.ErrorIs(t, err, ErrNoSession)

	_, _, err = f.svc.Session(ctx, "garbage")
	assert.ErrorIs(t, err, ErrNoSession)
	_, _, err = f.svc.Session(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionExpiresAndRefreshes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signed, err := f.svc.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	f.now = f.now.Add(DefaultTokenTTL - DefaultRefreshWindow + time.Minute)
	sess, refreshed, err := f.svc.Session(ctx, signed.AccessToken)
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.NotEqual(t, signed.AccessToken, sess.AccessToken)

	_, _, err = f.svc.Session(ctx, signed.AccessToken)
	assert.ErrorIs(t, err, ErrNoSession, "refreshed token is revoked")

	f.now = f.now.Add(2 * DefaultTokenTTL)
	_, _, err = f.svc.Session(ctx, sess.AccessToken)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestGrantRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signed, err := f.svc.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	// Prime the user cache with the customer role.
	_, _, err = f.svc.Session(ctx, signed.AccessToken)
	require.NoError(t, err)

	u, err := f.svc.GrantRole(ctx, "Ana@example.com", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	sess, _, err := f.svc.Session(ctx, signed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, sess.User.Role)

	_, err = f.svc.GrantRole(ctx, "ana@example.com", "owner")
	assert.True(t, apperror.Is(err, 422))
}

func TestSessionSurvivesRevocationLookupFailure(t *testing.T) {
	f := newFixture(t)
	fc := f.withFlakyCache()
	ctx := context.Background()
	signed, err := f.svc.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	fc.down = true
	_, _, err = f.svc.Session(ctx, signed.AccessToken)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
	assert.True(t, apperror.Is(err, 502))

	fc.down = false
	sess, _, err := f.svc.Session(ctx, signed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", sess.User.Email)
}
