// Package auth is the authentication side of the remote data service: the
// Service verifies credentials and issues tokens, the Client holds one
// browser's session and notifies listeners when it changes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vnfurniture/internal/apperror"
	"vnfurniture/internal/cache"
	"vnfurniture/internal/logger"
	"vnfurniture/internal/mail"
	"vnfurniture/internal/models"
	"vnfurniture/internal/store"
)

const (
	DefaultTokenTTL      = time.Hour
	DefaultRefreshWindow = 10 * time.Minute
	MinPasswordLength    = 6

	LoginMaxAttempts = 5
	LoginCooldown    = 15 * time.Minute
)

// Session is a signed-in user and the token proving it.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *models.User
}

type Options struct {
	Secret        []byte
	AdminEmails   []string
	TokenTTL      time.Duration
	RefreshWindow time.Duration
	Mailer        mail.Mailer
	Now           func() time.Time
}

type Service struct {
	users         store.Users
	cache         cache.Cache
	secret        []byte
	admins        map[string]bool
	tokenTTL      time.Duration
	refreshWindow time.Duration
	mailer        mail.Mailer
	now           func() time.Time
	validate      *validator.Validate

	// spawn runs background work such as the welcome mail.
	spawn func(func())
}

func NewService(users store.Users, c cache.Cache, opts Options) *Service {
	s := &Service{
		users:         users,
		cache:         c,
		secret:        opts.Secret,
		admins:        make(map[string]bool, len(opts.AdminEmails)),
		tokenTTL:      opts.TokenTTL,
		refreshWindow: opts.RefreshWindow,
		mailer:        opts.Mailer,
		now:           opts.Now,
		validate:      validator.New(),
		spawn:         func(f func()) { go f() },
	}
	for _, e := range opts.AdminEmails {
		s.admins[normalizeEmail(e)] = true
	}
	if s.tokenTTL <= 0 {
		s.tokenTTL = DefaultTokenTTL
	}
	if s.refreshWindow <= 0 {
		s.refreshWindow = DefaultRefreshWindow
	}
	if s.mailer == nil {
		s.mailer = mail.Noop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) checkCredentials(email, password string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return apperror.Validation("Please enter a valid email address")
	}
	if len(password) < MinPasswordLength {
		return apperror.Validation(fmt.Sprintf("Password should be at least %d characters", MinPasswordLength))
	}
	return nil
}

// SignUp creates a user and signs it in. Addresses listed as admin emails are
// created with the admin role.
func (s *Service) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if err := s.checkCredentials(email, password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, apperror.New(500, "Could not create account", err)
	}

	role := models.RoleCustomer
	if s.admins[email] {
		role = models.RoleAdmin
	}
	u := &models.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  hash,
		Role:      role,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperror.New(409, "User already registered", err)
		}
		return nil, apperror.Remote("Could not create account", err)
	}
	logger.Info(ctx, "✅ user signed up", zap.String("user_id", u.ID.String()), zap.String("role", role))

	s.spawn(func() {
		mctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mailer.SendWelcome(mctx, email); err != nil {
			logger.Log.Warn("welcome mail failed", zap.String("to", email), zap.Error(err))
		}
	})

	return s.newSession(u)
}

// SignInWithPassword verifies credentials. Repeated failures for one email
// put it in a cooldown.
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.Validation("Email and password are required")
	}

	attemptsKey := "login_attempts:" + email
	cooldownKey := "login_cooldown:" + email
	if blocked, _ := s.cache.Exists(ctx, cooldownKey); blocked {
		ttl, _ := s.cache.TTL(ctx, cooldownKey)
		return nil, apperror.New(429, fmt.Sprintf("Too many failed attempts. Try again in %d minutes", minutesCeil(ttl)), nil)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, apperror.Remote("Could not sign in", err)
	}
	ok := false
	if u != nil {
		ok, err = VerifyPassword(password, u.Password)
		if err != nil {
			logger.Error(ctx, "stored password hash unreadable", err, zap.String("user_id", u.ID.String()))
		}
	}
	if !ok {
		n, err := s.cache.Incr(ctx, attemptsKey, LoginCooldown)
		if err == nil && n >= LoginMaxAttempts {
			_ = s.cache.Set(ctx, cooldownKey, "1", LoginCooldown)
			_ = s.cache.Del(ctx, attemptsKey)
			logger.Warn(ctx, "🚫 login cooldown started", zap.String("email", email))
		}
		return nil, apperror.Unauthorized("Invalid login credentials")
	}

	_ = s.cache.Del(ctx, attemptsKey)
	return s.newSession(u)
}

func minutesCeil(d time.Duration) int {
	m := int((d + time.Minute - 1) / time.Minute)
	if m < 1 {
		return 1
	}
	return m
}

func (s *Service) newSession(u *models.User) (*Session, error) {
	token, claims, err := s.issueToken(u)
	if err != nil {
		return nil, apperror.New(500, "Could not sign in", err)
	}
	safe := *u
	safe.Password = ""
	return &Session{AccessToken: token, ExpiresAt: claims.ExpiresAt.Time, User: &safe}, nil
}

// SignOut revokes the token until its natural expiry. An already invalid
// token is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil
	}
	if err := cache.RevokeToken(ctx, s.cache, claims.ID, s.remaining(claims)); err != nil {
		return apperror.Remote("Could not sign out", err)
	}
	return nil
}

// ErrNoSession is returned by Session for a missing, expired or revoked token.
var ErrNoSession = errors.New("auth: no valid session")

// Session validates token and returns its user. A token close to expiry is
// exchanged for a fresh one and refreshed reports true.
func (s *Service) Session(ctx context.Context, token string) (sess *Session, refreshed bool, err error) {
	if token == "" {
		return nil, false, ErrNoSession
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, false, ErrNoSession
	}
	revoked, err := cache.IsTokenRevoked(ctx, s.cache, claims.ID)
	if err != nil {
		// Unknown is not revoked: the caller keeps the token and retries later.
		logger.Error(ctx, "revocation check failed", err)
		return nil, false, apperror.Remote("Could not load session", err)
	}
	if revoked {
		return nil, false, ErrNoSession
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, false, ErrNoSession
	}
	u, err := cache.GetUser(ctx, s.cache, s.users, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, ErrNoSession
		}
		return nil, false, apperror.Remote("Could not load session", err)
	}

	left := s.remaining(claims)
	if left > s.refreshWindow {
		return &Session{AccessToken: token, ExpiresAt: claims.ExpiresAt.Time, User: u}, false, nil
	}

	fresh, err := s.newSession(u)
	if err != nil {
		return nil, false, err
	}
	if err := cache.RevokeToken(ctx, s.cache, claims.ID, left); err != nil {
		logger.Error(ctx, "revoking refreshed token failed", err)
	}
	return fresh, true, nil
}

// GrantRole sets the role of the user registered under email.
func (s *Service) GrantRole(ctx context.Context, email, role string) (*models.User, error) {
	if role != models.RoleAdmin && role != models.RoleCustomer {
		return nil, apperror.Validation("unknown role " + role)
	}
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRole(ctx, u.ID, role); err != nil {
		return nil, err
	}
	if err := cache.InvalidateUser(ctx, s.cache, u.ID); err != nil {
		logger.Warn(ctx, "user cache invalidation failed", zap.String("user_id", u.ID.String()), zap.Error(err))
	}
	u.Role = role
	u.Password = ""
	return u, nil
}
