package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/confide-dev/confide/cache"
	"github.com/confide-dev/confide/domain"
	"github.com/confide-dev/confide/internal/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/rs/zerolog/log"
)

// SessionCookieName is the browser cookie carrying the signed session
// reference.
const SessionCookieName = "confide_sid"

// SessionMeta carries per-request metadata recorded on the session.
type SessionMeta struct {
	UserAgent string
	IPAddress string
}

// SessionService manages the two-state session model: a request is either
// Anonymous or Authenticated(user). The browser holds only an HMAC-signed
// reference to the session id; the session itself is a store record fronted
// by a cache, so logout is authoritative regardless of stale cookies.
type SessionService struct {
	sessionRepo domain.SessionRepository
	userRepo    domain.UserRepository
	cache       cache.SessionCache
	codec       *securecookie.SecureCookie
	ttl         time.Duration
}

// NewSessionService creates a new SessionService. signingSecret keys the
// cookie HMAC; ttl is the idle session lifetime.
func NewSessionService(
	sessionRepo domain.SessionRepository,
	userRepo domain.UserRepository,
	sessionCache cache.SessionCache,
	signingSecret []byte,
	ttl time.Duration,
) *SessionService {
	codec := securecookie.New(signingSecret, nil)
	codec.MaxAge(int(ttl.Seconds()))
	return &SessionService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		cache:       sessionCache,
		codec:       codec,
		ttl:         ttl,
	}
}

// TTL returns the configured session lifetime.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create transitions Anonymous -> Authenticated: it persists a session bound
// to the user and returns the signed cookie value the browser should hold.
func (s *SessionService) Create(ctx context.Context, userID string, meta SessionMeta) (*domain.Session, string, error) {
	now := time.Now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessionRepo.StoreSession(ctx, session); err != nil {
		return nil, "", fmt.Errorf("failed to store session: %w", err)
	}

	if err := s.cache.Set(ctx, session); err != nil {
		// Cache is advisory; the store record is authoritative.
		log.Warn().Err(err).Str("sessionID", session.ID).Msg("Failed to cache session")
	}

	encoded, err := s.codec.Encode(SessionCookieName, session.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode session cookie: %w", err)
	}

	metrics.ActiveSessionsGauge.Inc()
	log.Debug().Str("sessionID", session.ID).Str("userID", userID).Msg("Session created")
	return session, encoded, nil
}

// Resolve rehydrates a signed cookie value back to the bound user. Every
// failure mode (bad signature, unknown id, revoked, expired, user lookup
// failure) returns domain.ErrSessionNotFound so callers uniformly degrade to
// Anonymous.
func (s *SessionService) Resolve(ctx context.Context, cookieValue string) (*domain.User, *domain.Session, error) {
	var sessionID string
	if err := s.codec.Decode(SessionCookieName, cookieValue, &sessionID); err != nil {
		return nil, nil, domain.ErrSessionNotFound
	}

	session, err := s.lookupSession(ctx, sessionID)
	if err != nil {
		return nil, nil, domain.ErrSessionNotFound
	}
	if !session.Active(time.Now().UTC()) {
		return nil, nil, domain.ErrSessionNotFound
	}

	user, err := s.userRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		// Identity deleted or store unavailable: degrade, don't error.
		if !errors.Is(err, domain.ErrUserNotFound) {
			log.Warn().Err(err).Str("sessionID", sessionID).Msg("Session user lookup failed")
		}
		return nil, nil, domain.ErrSessionNotFound
	}

	return user, session, nil
}

// lookupSession reads through the cache to the session store.
func (s *SessionService) lookupSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.cache.Get(ctx, sessionID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, cache.ErrNotCached) {
		log.Warn().Err(err).Str("sessionID", sessionID).Msg("Session cache read failed")
	}

	session, err = s.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cacheErr := s.cache.Set(ctx, session); cacheErr != nil {
		log.Warn().Err(cacheErr).Str("sessionID", sessionID).Msg("Failed to backfill session cache")
	}
	return session, nil
}

// Revoke transitions Authenticated -> Anonymous. The store is updated first;
// the cache entry is dropped so no instance serves the stale binding.
func (s *SessionService) Revoke(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.RevokeSession(ctx, sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil // already gone, logout is idempotent
		}
		return err
	}
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("sessionID", sessionID).Msg("Failed to evict revoked session from cache")
	}
	metrics.ActiveSessionsGauge.Dec()
	return nil
}
