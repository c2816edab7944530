package tokens

import (
	"time"

	"rollcall_backend/models"

	"go.uber.org/zap"
)

// SessionDirectory resolves class sessions for the issuer.
type SessionDirectory interface {
	GetClassSession(sessionID int) (*models.ClassSession, error)
}

// Issuer maintains the one active token per running session. It holds no
// state of its own; every decision is made against the store so multiple
// server instances can issue and rotate safely.
type Issuer struct {
	store            Store
	sessions         SessionDirectory
	expiryWindow     time.Duration
	rotationInterval time.Duration
	logger           *zap.Logger
	now              func() time.Time
}

func NewIssuer(store Store, sessions SessionDirectory, expiryWindow, rotationInterval time.Duration, logger *zap.Logger) *Issuer {
	return &Issuer{
		store:            store,
		sessions:         sessions,
		expiryWindow:     expiryWindow,
		rotationInterval: rotationInterval,
		logger:           logger,
		now:              time.Now,
	}
}

// SetNow overrides the issuer's clock. Tests use this to drive rotation
// deterministically.
func (i *Issuer) SetNow(now func() time.Time) {
	i.now = now
}

// GetOrCreateActiveToken returns the session's active token, minting a
// fresh one when none exists or the current one has expired.
func (i *Issuer) GetOrCreateActiveToken(sessionID int) (*models.SessionToken, error) {
	if err := i.checkSession(sessionID); err != nil {
		return nil, err
	}

	now := i.now()
	current, err := i.store.GetCurrent(sessionID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		if current.Active(now) {
			return current, nil
		}
		// Expired but never superseded: close it out before minting so the
		// one-unsuperseded-token constraint lets the insert through.
		if err := i.store.Supersede(current.ID, now); err != nil {
			return nil, err
		}
	}

	return i.mint(sessionID, now)
}

// Rotate supersedes the session's current token and mints its replacement.
// Scheduled ticks (force=false) skip a token that will still be alive at
// the next tick, which makes a doubled tick a no-op; a token that would
// expire before then is replaced even if it was minted mid-interval.
// Manual rotation (force=true) always replaces.
func (i *Issuer) Rotate(sessionID int, force bool) (*models.SessionToken, error) {
	if err := i.checkSession(sessionID); err != nil {
		return nil, err
	}

	now := i.now()
	current, err := i.store.GetCurrent(sessionID)
	if err != nil {
		return nil, err
	}

	if current == nil {
		if !force {
			// Nothing displayed yet; issuance happens on the first QR fetch.
			return nil, nil
		}
		return i.mint(sessionID, now)
	}

	if !force && current.Active(now) && current.ExpiresAt.After(now.Add(i.rotationInterval)) {
		return current, nil
	}

	if err := i.store.Supersede(current.ID, now); err != nil {
		return nil, err
	}

	token, err := i.mint(sessionID, now)
	if err != nil {
		return nil, err
	}

	i.logger.Info("rotated session token",
		zap.Int("session_id", sessionID),
		zap.String("old_fingerprint", Fingerprint(current.Token)),
		zap.String("new_fingerprint", Fingerprint(token.Token)),
	)
	return token, nil
}

func (i *Issuer) checkSession(sessionID int) error {
	session, err := i.sessions.GetClassSession(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if session.Ended(i.now()) {
		return ErrSessionClosed
	}
	return nil
}

func (i *Issuer) mint(sessionID int, now time.Time) (*models.SessionToken, error) {
	value, err := Generate()
	if err != nil {
		return nil, err
	}
	token, err := i.store.Create(sessionID, value, now, now.Add(i.expiryWindow))
	if err == ErrDuplicateActiveToken {
		// Lost a mint race to a concurrent worker. The winner's token is
		// just as valid, so hand it out instead of surfacing an error.
		current, curErr := i.store.GetCurrent(sessionID)
		if curErr == nil && current != nil && current.Active(now) {
			return current, nil
		}
		return nil, err
	}
	return token, err
}
