package models

import "time"

// SessionToken is one issued QR token for a class session. A session's
// rotation history is the full set of its rows; the active token is the one
// that is neither superseded nor past its expiry.
type SessionToken struct {
	ID           int        `json:"id"`
	SessionID    int        `json:"session_id"`
	Token        string     `json:"token"`
	IssuedAt     time.Time  `json:"issued_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	SupersededAt *time.Time `json:"superseded_at,omitempty"`
}

// Active reports whether the token is still valid for check-in at the given
// instant. A superseded token is dead immediately, even before its expiry.
func (t *SessionToken) Active(now time.Time) bool {
	return t.SupersededAt == nil && now.Before(t.ExpiresAt)
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
