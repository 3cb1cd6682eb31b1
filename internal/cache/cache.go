package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vnfurniture/internal/models"
	"vnfurniture/internal/store"
)

const UserCacheTTL = 5 * time.Minute

func userKey(id uuid.UUID) string { return "user:" + id.String() }

// GetUser reads a user through the cache, falling back to the users table.
func GetUser(ctx context.Context, c Cache, users store.Users, id uuid.UUID) (*models.User, error) {
	if data, err := c.Get(ctx, userKey(id)); err == nil {
		var u models.User
		if json.Unmarshal([]byte(data), &u) == nil {
			return &u, nil
		}
	}

	u, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Never cache the password hash.
	cached := *u
	cached.Password = ""
	if data, err := json.Marshal(cached); err == nil {
		_ = c.Set(ctx, userKey(id), string(data), UserCacheTTL)
	}
	return &cached, nil
}

func InvalidateUser(ctx context.Context, c Cache, id uuid.UUID) error {
	return c.Del(ctx, userKey(id))
}

// --- token revocation ---

func revokedKey(tokenID string) string { return fmt.Sprintf("revoked:%s", tokenID) }

// RevokeToken blacklists a token id until it would have expired anyway.
func RevokeToken(ctx context.Context, c Cache, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.Set(ctx, revokedKey(tokenID), "revoked", ttl)
}

// IsTokenRevoked fails closed: a cache error counts as revoked. Callers that
// can tell an outage from a revocation should check err first.
func IsTokenRevoked(ctx context.Context, c Cache, tokenID string) (bool, error) {
	ok, err := c.Exists(ctx, revokedKey(tokenID))
	if err != nil {
		return true, err
	}
	return ok, nil
}

// IsMiss reports whether err is a cache miss.
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}
