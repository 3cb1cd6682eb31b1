package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"vnfurniture/internal/auth"
	"vnfurniture/internal/logger"
	"vnfurniture/internal/state"
	"vnfurniture/internal/web"
)

const (
	SessionName = "vnf_session"

	sessionKey   = "session"
	authStateKey = "auth_state"
	persistedKey = "session_persisted"
	tokenKey     = "access_token"

	flashSuccess = "success"
	flashError   = "error"
)

// NewCookieStore returns the browser session store.
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// flashNotifier turns state notifications into session flashes.
type flashNotifier struct{ sess *sessions.Session }

func (n flashNotifier) Success(m string) { n.sess.AddFlash(m, flashSuccess) }
func (n flashNotifier) Error(m string)   { n.sess.AddFlash(m, flashError) }

// Session mounts the per-request auth state from the browser cookie and
// closes it once the request is done.
func Session(store sessions.Store, svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := store.Get(c.Request, SessionName)
		if err != nil {
			// A cookie signed with an old secret: start over.
			logger.Warn(c, "discarding unreadable session", zap.Error(err))
		}
		token, _ := sess.Values[tokenKey].(string)

		a := state.NewAuthState(auth.NewClient(svc, token), flashNotifier{sess})
		if err := a.Init(c); err != nil {
			logger.Error(c, "session lookup failed", err)
		}
		defer a.Close()

		c.Set(sessionKey, sess)
		c.Set(authStateKey, a)
		c.Writer = &persistingWriter{ResponseWriter: c.Writer, persist: func() { Persist(c) }}
		c.Next()
	}
}

// Auth returns the request's auth state.
func Auth(c *gin.Context) *state.AuthState {
	return c.MustGet(authStateKey).(*state.AuthState)
}

// Notifier returns a notifier whose messages show on the next rendered page.
func Notifier(c *gin.Context) state.Notifier {
	return flashNotifier{c.MustGet(sessionKey).(*sessions.Session)}
}

// Flashes drains pending notifications.
func Flashes(c *gin.Context) []web.Flash {
	sess := c.MustGet(sessionKey).(*sessions.Session)
	var out []web.Flash
	for _, kind := range []string{flashSuccess, flashError} {
		for _, f := range sess.Flashes(kind) {
			if m, ok := f.(string); ok {
				out = append(out, web.Flash{Kind: kind, Message: m})
			}
		}
	}
	return out
}

// persistingWriter saves the session before the first byte of any response,
// so JSON routes carry a refreshed token too.
type persistingWriter struct {
	gin.ResponseWriter
	persist func()
}

func (w *persistingWriter) WriteHeaderNow() {
	if !w.Written() {
		w.persist()
	}
	w.ResponseWriter.WriteHeaderNow()
}

func (w *persistingWriter) Write(b []byte) (int, error) {
	if !w.Written() {
		w.persist()
	}
	return w.ResponseWriter.Write(b)
}

func (w *persistingWriter) WriteString(s string) (int, error) {
	if !w.Written() {
		w.persist()
	}
	return w.ResponseWriter.WriteString(s)
}

// Persist writes the session cookie once per request. It must run before the
// response body.
func Persist(c *gin.Context) {
	if c.GetBool(persistedKey) {
		return
	}
	c.Set(persistedKey, true)
	sess := c.MustGet(sessionKey).(*sessions.Session)
	if token := Auth(c).AccessToken(); token != "" {
		sess.Values[tokenKey] = token
	} else {
		delete(sess.Values, tokenKey)
	}
	if err := sess.Save(c.Request, c.Writer); err != nil {
		logger.Error(c, "saving session failed", err)
	}
}

// Redirect persists the session and answers with 303 See Other.
func Redirect(c *gin.Context, location string) {
	Persist(c)
	c.Redirect(http.StatusSeeOther, location)
	c.Abort()
}

// Back is the same-origin referring path, or fallback.
func Back(c *gin.Context, fallback string) string {
	ref, err := url.Parse(c.Request.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != c.Request.Host) {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
