package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seen struct {
	event Event
	email string
}

func record(c *Client) (*[]seen, func()) {
	var events []seen
	unsubscribe := c.OnAuthStateChange(func(e Event, s *Session) {
		email := ""
		if s != nil {
			email = s.User.Email
		}
		events = append(events, seen{e, email})
	})
	return &events, unsubscribe
}

func TestClientSignInAndOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	c := NewClient(f.svc, "")
	events, unsubscribe := record(c)
	defer unsubscribe()

	sess, err := c.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	_, err = c.SignInWithPassword(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	token := c.AccessToken()
	assert.NotEmpty(t, token)

	require.NoError(t, c.SignOut(ctx))
	assert.Empty(t, c.AccessToken())

	assert.Equal(t, []seen{
		{EventInitialSession, ""},
		{EventSignedIn, "ana@example.com"},
		{EventSignedOut, ""},
	}, *events)

	// The revoked token no longer resolves in a fresh browser session.
	again, err := NewClient(f.svc, token).GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestClientFailedSignInEmitsNothing(t *testing.T) {
	f := newFixture(t)
	c := NewClient(f.svc, "")
	events, unsubscribe := record(c)
	defer unsubscribe()

	_, err := c.SignInWithPassword(context.Background(), "ghost@example.com", "secret1")
	require.Error(t, err)
	assert.Empty(t, *events)
}

func TestClientRestoresAndRefreshes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signed, err := f.svc.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	c := NewClient(f.svc, signed.AccessToken)
	sess, err := c.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, signed.AccessToken, c.AccessToken())

	f.now = f.now.Add(DefaultTokenTTL - time.Minute)
	c2 := NewClient(f.svc, signed.AccessToken)
	events, unsubscribe := record(c2)
	defer unsubscribe()
	_, err = c2.GetSession(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, signed.AccessToken, c2.AccessToken())
	assert.Equal(t, []seen{
		{EventInitialSession, "ana@example.com"},
		{EventTokenRefreshed, "ana@example.com"},
	}, *events)
}

func TestClientUnsubscribe(t *testing.T) {
	f := newFixture(t)
	c := NewClient(f.svc, "")
	events, unsubscribe := record(c)
	assert.Equal(t, 1, c.Listeners())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, c.Listeners())

	_, err := c.SignUp(context.Background(), "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Empty(t, *events)
}

func TestClientKeepsTokenDuringCacheOutage(t *testing.T) {
	f := newFixture(t)
	fc := f.withFlakyCache()
	ctx := context.Background()
	signed, err := f.svc.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	fc.down = true
	c := NewClient(f.svc, signed.AccessToken)
	events, unsubscribe := record(c)
	defer unsubscribe()

	sess, err := c.GetSession(ctx)
	require.Error(t, err)
	assert.Nil(t, sess)
	assert.Equal(t, signed.AccessToken, c.AccessToken(), "token is kept for the next request")
	assert.Empty(t, *events)
}
