package domain

import "time"

// TokenKind differentiates access vs refresh tokens. Each kind is signed
// with its own secret so one can never be presented as the other.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenPair bundles the credentials returned by register and login.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// PasswordResetToken is the stored single-use reset secret. A token
// authorizes exactly one password change while unexpired and unused.
type PasswordResetToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Used reports whether the token has already authorized a password change.
func (t *PasswordResetToken) Used() bool {
	return t.UsedAt != nil
}
