package state

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"vnfurniture/internal/apperror"
	"vnfurniture/internal/auth"
	"vnfurniture/internal/logger"
	"vnfurniture/internal/models"
)

// AuthState mirrors the session of one auth.Client. The current user only
// changes when the client reports a session change.
type AuthState struct {
	client *auth.Client
	notify Notifier

	mu          sync.RWMutex
	user        *models.User
	loading     bool
	unsubscribe func()
	listeners   map[int]func(*models.User)
	nextID      int
}

func NewAuthState(client *auth.Client, notify Notifier) *AuthState {
	if notify == nil {
		notify = Discard{}
	}
	return &AuthState{
		client:    client,
		notify:    notify,
		loading:   true,
		listeners: make(map[int]func(*models.User)),
	}
}

// Init subscribes to the client and resolves the existing session.
func (a *AuthState) Init(ctx context.Context) error {
	a.mu.Lock()
	if a.unsubscribe == nil {
		a.unsubscribe = a.client.OnAuthStateChange(a.onChange)
	}
	a.mu.Unlock()

	_, err := a.client.GetSession(ctx)

	a.mu.Lock()
	a.loading = false
	a.mu.Unlock()

	if err != nil {
		logger.Error(ctx, "reading session failed", err)
		return err
	}
	return nil
}

func (a *AuthState) onChange(event auth.Event, sess *auth.Session) {
	var u *models.User
	if sess != nil {
		u = sess.User
	}

	a.mu.Lock()
	a.user = u
	fns := make([]func(*models.User), 0, len(a.listeners))
	for i := 0; i < a.nextID; i++ {
		if fn, ok := a.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	a.mu.Unlock()

	logger.Log.Debug("auth state changed", zap.String("event", string(event)))
	for _, fn := range fns {
		fn(u)
	}
}

// User returns the signed-in user or nil.
func (a *AuthState) User() *models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

// Loading is true until Init has resolved the session.
func (a *AuthState) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// Subscribe calls fn with the new user after every session change.
func (a *AuthState) Subscribe(fn func(*models.User)) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *AuthState) SignIn(ctx context.Context, email, password string) error {
	if _, err := a.client.SignInWithPassword(ctx, email, password); err != nil {
		return a.fail(ctx, "sign in failed", err)
	}
	return nil
}

func (a *AuthState) SignUp(ctx context.Context, email, password string) error {
	if _, err := a.client.SignUp(ctx, email, password); err != nil {
		return a.fail(ctx, "sign up failed", err)
	}
	return nil
}

// SignOut ends the session. Navigation afterwards is up to the caller.
func (a *AuthState) SignOut(ctx context.Context) error {
	if err := a.client.SignOut(ctx); err != nil {
		return a.fail(ctx, "sign out failed", err)
	}
	return nil
}

// AccessToken is the token to persist in the browser after this request.
func (a *AuthState) AccessToken() string {
	return a.client.AccessToken()
}

func (a *AuthState) fail(ctx context.Context, msg string, err error) error {
	if apperror.Code(err) >= 500 {
		logger.Error(ctx, msg, err)
	} else {
		logger.Warn(ctx, msg, zap.String("reason", apperror.Message(err)))
	}
	a.notify.Error(apperror.Message(err))
	return err
}

// Close drops the client subscription and every local listener.
func (a *AuthState) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.listeners = make(map[int]func(*models.User))
}
