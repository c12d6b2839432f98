package domain

import "time"

// Provider names accepted by the federation layer and used as document
// field discriminators in the user collection.
const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// User represents an identity record. A record carries at least one of a
// local credential (Username+PasswordHash) or a provider subject id; records
// with none of them are unreachable via login.
type User struct {
	ID           string `bson:"_id,omitempty"` // MongoDB ID
	Username     string `bson:"username,omitempty"`
	PasswordHash string `bson:"password_hash,omitempty"`

	// Subject ids issued by external identity providers. Each is unique
	// across all records (sparse unique index).
	GoogleID   string `bson:"google_id,omitempty"`
	FacebookID string `bson:"facebook_id,omitempty"`

	// Secret is the single free-text value the user may publish. Empty
	// means "never submitted"; submissions overwrite, never append.
	Secret string `bson:"secret,omitempty"`

	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty"`
}

// HasLocalCredential reports whether the record was locally registered.
func (u *User) HasLocalCredential() bool {
	return u.Username != "" && u.PasswordHash != ""
}

// SubjectID returns the stored subject id for the given provider, or "".
func (u *User) SubjectID(provider string) string {
	switch provider {
	case ProviderGoogle:
		return u.GoogleID
	case ProviderFacebook:
		return u.FacebookID
	}
	return ""
}
