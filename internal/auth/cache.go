package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"contracting/internal/domain"
)

// Cache holds validated sessions keyed by session id.
type Cache interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Delete(ctx context.Context, sessionID string) error
}

// ErrCacheMiss is returned by Cache.Get when the session is not cached.
var ErrCacheMiss = errors.New("session not cached")

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

type cachedSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

func sessionCacheKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (c *RedisCache) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := c.client.Get(ctx, sessionCacheKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var cs cachedSession
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("decode cached session: %w", err)
	}
	return &Session{
		ID:        cs.ID,
		ExpiresAt: cs.ExpiresAt,
		User:      domain.User{ID: cs.UserID, Email: cs.Email},
	}, nil
}

func (c *RedisCache) Set(ctx context.Context, s *Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(cachedSession{
		ID:        s.ID,
		UserID:    s.User.ID,
		Email:     s.User.Email,
		ExpiresAt: s.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := c.client.Set(ctx, sessionCacheKey(s.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, sessionCacheKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
