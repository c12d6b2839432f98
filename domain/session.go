package domain

import "time"

// Session represents an active browser session. The session document lives
// in MongoDB (TTL index on expires_at) and may be fronted by a cache; the
// browser only ever holds a signed reference to the session ID.
type Session struct {
	ID        string    `bson:"_id,omitempty"`
	UserID    string    `bson:"user_id"`
	UserAgent string    `bson:"user_agent,omitempty"`
	IPAddress string    `bson:"ip_address,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
	IsRevoked bool      `bson:"is_revoked,omitempty"` // set on logout
}

// Active reports whether the session can still be resolved to a user.
func (s *Session) Active(now time.Time) bool {
	return !s.IsRevoked && now.Before(s.ExpiresAt)
}
