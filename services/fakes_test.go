package services_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/confide-dev/confide/domain"
)

// fakeUserRepo is an in-memory domain.UserRepository enforcing the same
// uniqueness constraints as the MongoDB indexes. All methods take the lock,
// so find-or-create is atomic the way the store upsert is.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User // by ID
	nextID int
	// failReads simulates an unavailable store for read paths.
	failReads bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) newID() string {
	r.nextID++
	return fmt.Sprintf("user-%d", r.nextID)
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if user.Username != "" && u.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	if user.ID == "" {
		user.ID = r.newID()
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failReads {
		return nil, fmt.Errorf("store unavailable")
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failReads {
		return nil, fmt.Errorf("store unavailable")
	}
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) FindOrCreateByProvider(_ context.Context, provider, subjectID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.SubjectID(provider) == subjectID {
			clone := *u
			return &clone, nil
		}
	}
	user := &domain.User{ID: r.newID(), CreatedAt: time.Now().UTC()}
	switch provider {
	case domain.ProviderGoogle:
		user.GoogleID = subjectID
	case domain.ProviderFacebook:
		user.FacebookID = subjectID
	default:
		return nil, domain.ErrUnknownProvider
	}
	r.users[user.ID] = user
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) SaveSecret(_ context.Context, userID, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Secret = secret
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeUserRepo) ListSecrets(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failReads {
		return nil, fmt.Errorf("store unavailable")
	}
	var secrets []string
	for _, u := range r.users {
		if u.Secret != "" {
			secrets = append(secrets, u.Secret)
		}
	}
	return secrets, nil
}

func (r *fakeUserRepo) TouchLastLogin(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		now := time.Now().UTC()
		u.LastLoginAt = &now
	}
	return nil
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *fakeUserRepo) delete(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, userID)
}

// fakeSessionRepo is an in-memory domain.SessionRepository.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	nextID   int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *fakeSessionRepo) StoreSession(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == "" {
		r.nextID++
		session.ID = fmt.Sprintf("session-%d", r.nextID)
	}
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *fakeSessionRepo) GetSessionByID(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *fakeSessionRepo) RevokeSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.IsRevoked = true
	return nil
}

func (r *fakeSessionRepo) DeleteExpiredSessions(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for id, s := range r.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *fakeSessionRepo) CountActiveSessions(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	var count int64
	for _, s := range r.sessions {
		if s.Active(now) {
			count++
		}
	}
	return count, nil
}

func (r *fakeSessionRepo) expire(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	}
}
