package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnfurniture/internal/auth"
	"vnfurniture/internal/models"
)

func TestAuthStateAnonymous(t *testing.T) {
	e := newEnv(t)
	a := NewAuthState(auth.NewClient(e.svc, ""), e.notes)
	defer a.Close()
	assert.True(t, a.Loading())

	require.NoError(t, a.Init(context.Background()))
	assert.False(t, a.Loading())
	assert.Nil(t, a.User())
}

func TestAuthStateRestoresSession(t *testing.T) {
	e := newEnv(t)
	token := e.signUp(t, "ana@example.com")

	a := e.authState(t, token)
	require.NotNil(t, a.User())
	assert.Equal(t, "ana@example.com", a.User().Email)
}

func TestAuthStateSignInNotifiesSubscribers(t *testing.T) {
	e := newEnv(t)
	e.signUp(t, "ana@example.com")
	a := e.authState(t, "")

	var seen []*models.User
	unsubscribe := a.Subscribe(func(u *models.User) { seen = append(seen, u) })
	defer unsubscribe()

	require.NoError(t, a.SignIn(context.Background(), "ana@example.com", "secret1"))
	require.NotNil(t, a.User())
	assert.NotEmpty(t, a.AccessToken())

	require.NoError(t, a.SignOut(context.Background()))
	assert.Nil(t, a.User())
	assert.Empty(t, a.AccessToken())

	require.Len(t, seen, 2)
	assert.Equal(t, "ana@example.com", seen[0].Email)
	assert.Nil(t, seen[1])
}

func TestAuthStateSignInFailure(t *testing.T) {
	e := newEnv(t)
	a := e.authState(t, "")

	err := a.SignIn(context.Background(), "ana@example.com", "nope-nope")
	require.Error(t, err)
	assert.Nil(t, a.User())
	assert.Equal(t, []string{"Invalid login credentials"}, e.notes.errors)
}

func TestAuthStateSignUp(t *testing.T) {
	e := newEnv(t)
	a := e.authState(t, "")

	require.NoError(t, a.SignUp(context.Background(), "admin@vnfurniture.test", "secret1"))
	require.NotNil(t, a.User())
	assert.Equal(t, models.RoleAdmin, a.User().Role)

	b := e.authState(t, "")
	require.Error(t, b.SignUp(context.Background(), "admin@vnfurniture.test", "secret1"))
	assert.Equal(t, []string{"User already registered"}, e.notes.errors)
}

func TestAuthStateCloseUnsubscribes(t *testing.T) {
	e := newEnv(t)
	e.signUp(t, "ana@example.com")
	client := auth.NewClient(e.svc, "")
	a := NewAuthState(client, e.notes)
	require.NoError(t, a.Init(context.Background()))
	assert.Equal(t, 1, client.Listeners())

	called := false
	a.Subscribe(func(*models.User) { called = true })
	a.Close()
	assert.Equal(t, 0, client.Listeners())

	_, err := client.SignInWithPassword(context.Background(), "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.False(t, called)
	assert.Nil(t, a.User())
}
