package tokens

import "errors"

var (
	// ErrSessionNotFound means the class session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionClosed means the session's end time has passed.
	ErrSessionClosed = errors.New("session has ended")

	// ErrInvalidToken means no token with the scanned value was ever issued.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired means the token is known but past its validity,
	// either by wall clock or because rotation superseded it.
	ErrTokenExpired = errors.New("token expired")

	// ErrDuplicateActiveToken means a create raced another active token for
	// the same session. The issuer always supersedes before creating, so
	// this indicates a programming error and surfaces as a 500.
	ErrDuplicateActiveToken = errors.New("session already has an active token")
)
