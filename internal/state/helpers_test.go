package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"vnfurniture/internal/auth"
	"vnfurniture/internal/cache"
	"vnfurniture/internal/models"
	"vnfurniture/internal/storage"
	"vnfurniture/internal/store"
	"vnfurniture/internal/store/memory"
)

var errOffline = errors.New("remote offline")

type recorder struct {
	successes []string
	errors    []string
}

func (r *recorder) Success(m string) { r.successes = append(r.successes, m) }
func (r *recorder) Error(m string)   { r.errors = append(r.errors, m) }

type env struct {
	db      *memory.DB
	backend *store.Backend
	bucket  *storage.Memory
	svc     *auth.Service
	notes   *recorder
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := memory.New()
	backend := db.Backend()
	return &env{
		db:      db,
		backend: backend,
		bucket:  storage.NewMemory("products", "http://cdn.test"),
		svc: auth.NewService(backend.Users, cache.NewMemory(), auth.Options{
			Secret:      []byte("state-tests"),
			AdminEmails: []string{"admin@vnfurniture.test"},
		}),
		notes: &recorder{},
	}
}

// signUp registers email and returns its token.
func (e *env) signUp(t *testing.T, email string) string {
	t.Helper()
	sess, err := e.svc.SignUp(context.Background(), email, "secret1")
	require.NoError(t, err)
	return sess.AccessToken
}

// authState mounts an AuthState for a browser presenting token.
func (e *env) authState(t *testing.T, token string) *AuthState {
	t.Helper()
	a := NewAuthState(auth.NewClient(e.svc, token), e.notes)
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(a.Close)
	return a
}

func (e *env) product(t *testing.T, name, price string, category models.Category, created time.Time) models.Product {
	t.Helper()
	img := "http://cdn.test/products/product-images/" + name + ".png"
	p := models.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Category:  category,
		ImageURL:  &img,
		CreatedAt: created,
	}
	require.NoError(t, e.backend.Products.Insert(context.Background(), &p))
	return p
}

func failOn(ops ...string) func(string) error {
	return func(op string) error {
		for _, o := range ops {
			if o == op {
				return errOffline
			}
		}
		return nil
	}
}
