package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/easygenerator/auth-api/internal/core/domain"
	"github.com/easygenerator/auth-api/internal/pkg/metrics"
)

const (
	defaultUserTTL = 5 * time.Minute

	// evictedMarker replaces an entry on Delete and blocks Set until it
	// expires, so a read that started before a mutation cannot re-cache the
	// old record. It must outlive the slowest repository read.
	evictedMarker = "evicted"
	evictedTTL    = 30 * time.Second
)

// UserCache keeps token subjects resolved to users for a short TTL.
// Key format: user:<id>. Password digests are never written.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUserCache wraps client. A non-positive ttl selects five minutes.
func NewUserCache(client *redis.Client, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = defaultUserTTL
	}
	return &UserCache{client: client, ttl: ttl}
}

type cachedUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *UserCache) Get(ctx context.Context, id string) (*domain.User, bool, error) {
	raw, err := c.client.Get(ctx, userKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.UserCacheTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("user cache get: %w", err)
	}
	if string(raw) == evictedMarker {
		metrics.UserCacheTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}

	user, err := decodeUser(raw)
	if err != nil {
		metrics.UserCacheTotal.WithLabelValues("miss").Inc()
		return nil, false, err
	}
	metrics.UserCacheTotal.WithLabelValues("hit").Inc()
	return user, true, nil
}

// Set stores user only if the key is absent. An existing entry or an
// eviction marker wins.
func (c *UserCache) Set(ctx context.Context, user *domain.User) error {
	raw, err := encodeUser(user)
	if err != nil {
		return err
	}
	if err := c.client.SetNX(ctx, userKey(user.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("user cache set: %w", err)
	}
	return nil
}

// Delete replaces the entry with an eviction marker.
func (c *UserCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Set(ctx, userKey(id), evictedMarker, evictedTTL).Err(); err != nil {
		return fmt.Errorf("user cache delete: %w", err)
	}
	return nil
}

func userKey(id string) string {
	return "user:" + id
}

func encodeUser(u *domain.User) ([]byte, error) {
	raw, err := json.Marshal(cachedUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode cached user: %w", err)
	}
	return raw, nil
}

func decodeUser(raw []byte) (*domain.User, error) {
	var cu cachedUser
	if err := json.Unmarshal(raw, &cu); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return &domain.User{
		ID:        cu.ID,
		Name:      cu.Name,
		Email:     cu.Email,
		Role:      domain.Role(cu.Role),
		CreatedAt: cu.CreatedAt,
		UpdatedAt: cu.UpdatedAt,
	}, nil
}
