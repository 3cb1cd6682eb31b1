package auth

import (
	"context"
	"errors"
	"sync"
)

// Event names a session change, matching the remote SDK's vocabulary.
type Event string

const (
	EventInitialSession Event = "INITIAL_SESSION"
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
)

// Listener receives session changes. session is nil after sign-out.
type Listener func(event Event, session *Session)

// Authenticator is the server side a Client talks to.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	Session(ctx context.Context, token string) (*Session, bool, error)
}

// Client is one browser's view of the auth service. It starts from the token
// the browser presented and tracks every change made through it.
type Client struct {
	svc Authenticator

	mu        sync.Mutex
	token     string
	session   *Session
	loaded    bool
	listeners map[int]Listener
	nextID    int
}

func NewClient(svc Authenticator, token string) *Client {
	return &Client{svc: svc, token: token, listeners: make(map[int]Listener)}
}

// GetSession resolves the stored token once and emits INITIAL_SESSION. A token
// that no longer validates is dropped; one that was refreshed also emits
// TOKEN_REFRESHED.
func (c *Client) GetSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	if c.loaded {
		s := c.session
		c.mu.Unlock()
		return s, nil
	}
	token := c.token
	c.mu.Unlock()

	var (
		sess      *Session
		refreshed bool
	)
	if token != "" {
		var err error
		sess, refreshed, err = c.svc.Session(ctx, token)
		if err != nil && !errors.Is(err, ErrNoSession) {
			return nil, err
		}
	}
	c.set(sess)
	c.emit(EventInitialSession, sess)
	if refreshed {
		c.emit(EventTokenRefreshed, sess)
	}
	return sess, nil
}

// OnAuthStateChange registers fn and returns its unsubscribe function.
// Calling unsubscribe more than once is harmless.
func (c *Client) OnAuthStateChange(fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	sess, err := c.svc.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.set(sess)
	c.emit(EventSignedIn, sess)
	return sess, nil
}

// SignUp registers and signs in immediately; accounts need no confirmation.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	sess, err := c.svc.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.set(sess)
	c.emit(EventSignedIn, sess)
	return sess, nil
}

// SignOut clears the local session even when revocation fails.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	var err error
	if token != "" {
		err = c.svc.SignOut(ctx, token)
	}
	c.set(nil)
	c.emit(EventSignedOut, nil)
	return err
}

// AccessToken is the token the browser should keep.
func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Listeners reports how many listeners are registered.
func (c *Client) Listeners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

func (c *Client) set(sess *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = sess
	c.loaded = true
	if sess == nil {
		c.token = ""
	} else {
		c.token = sess.AccessToken
	}
}

func (c *Client) emit(event Event, sess *Session) {
	c.mu.Lock()
	fns := make([]Listener, 0, len(c.listeners))
	for i := 0; i < c.nextID; i++ {
		if fn, ok := c.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(event, sess)
	}
}
