package cache

import (
	"context"
	"errors"

	"github.com/confide-dev/confide/domain"
)

// ErrNotCached is returned when a session is not present in the cache.
// Callers fall through to the session repository on this error.
var ErrNotCached = errors.New("session not cached")

// SessionCache is a read-through cache in front of the session repository.
// A cache miss is never an authentication failure; it only forces a store
// lookup.
type SessionCache interface {
	Set(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
}
