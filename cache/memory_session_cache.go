package cache

import (
	"context"
	"time"

	"github.com/confide-dev/confide/domain"
	"github.com/jellydator/ttlcache/v3"
)

// MemorySessionCache implements SessionCache using ttlcache. Entries expire
// together with the session they front.
type MemorySessionCache struct {
	cache *ttlcache.Cache[string, *domain.Session]
}

// NewMemorySessionCache creates a new in-memory session cache with automatic
// cleanup.
//
//nolint:ireturn
func NewMemorySessionCache(defaultTTL time.Duration) SessionCache {
	c := ttlcache.New(
		ttlcache.WithTTL[string, *domain.Session](defaultTTL),
		ttlcache.WithDisableTouchOnHit[string, *domain.Session](),
	)

	// Start the cleanup process
	go c.Start()

	return &MemorySessionCache{cache: c}
}

// Set implements SessionCache.Set.
func (s *MemorySessionCache) Set(_ context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	s.cache.Set(session.ID, session, ttl)
	return nil
}

// Get implements SessionCache.Get.
func (s *MemorySessionCache) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	item := s.cache.Get(sessionID)
	if item == nil {
		return nil, ErrNotCached
	}
	return item.Value(), nil
}

// Delete removes a session from the cache.
func (s *MemorySessionCache) Delete(_ context.Context, sessionID string) error {
	s.cache.Delete(sessionID)
	return nil
}
