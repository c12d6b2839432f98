package domain

import (
	"context"
)

// UserRepository defines persistence for identity records.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// FindOrCreateByProvider resolves the identity owning the given
	// provider subject id, creating it atomically when absent. Concurrent
	// first-time calls for the same subject id must yield one record.
	FindOrCreateByProvider(ctx context.Context, provider, subjectID string) (*User, error)

	// SaveSecret overwrites the secret field on a single identity.
	SaveSecret(ctx context.Context, userID, secret string) error

	// ListSecrets returns the secret values of all identities that have
	// one, newest first. Author identities are not exposed.
	ListSecrets(ctx context.Context) ([]string, error)

	TouchLastLogin(ctx context.Context, userID string) error
}

// SessionRepository defines persistence for browser sessions.
type SessionRepository interface {
	StoreSession(ctx context.Context, session *Session) error
	GetSessionByID(ctx context.Context, id string) (*Session, error)
	RevokeSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) error

	// CountActiveSessions reports how many sessions are neither revoked
	// nor past their expiry.
	CountActiveSessions(ctx context.Context) (int64, error)
}
