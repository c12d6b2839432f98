package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/confide-dev/confide/cache"
	"github.com/confide-dev/confide/domain"
	"github.com/redis/go-redis/v9"
)

// SessionCache implements the cache.SessionCache interface using Redis.
// Suitable when several gateway instances share session state.
type SessionCache struct {
	client *redis.Client
	prefix string // optional key prefix
}

// NewSessionCache creates a new Redis-backed SessionCache.
func NewSessionCache(client *redis.Client, prefix string) *SessionCache {
	return &SessionCache{
		client: client,
		prefix: prefix,
	}
}

// redisKey returns the Redis key for a given session id.
func (r *SessionCache) redisKey(sessionID string) string {
	return fmt.Sprintf("%s:session:%s", r.prefix, sessionID)
}

// Set stores a session with an expiry matching the session's own.
func (r *SessionCache) Set(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, r.redisKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session in Redis: %w", err)
	}
	return nil
}

// Get retrieves a session by id. Misses map to cache.ErrNotCached.
func (r *SessionCache) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	payload, err := r.client.Get(ctx, r.redisKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrNotCached
		}
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes a session from Redis.
func (r *SessionCache) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}
	return nil
}

// Ensure interface compliance
var _ cache.SessionCache = (*SessionCache)(nil)
