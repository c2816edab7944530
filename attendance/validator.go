package attendance

import (
	"time"

	"rollcall_backend/models"
	"rollcall_backend/tokens"

	"go.uber.org/zap"
)

// AuditLog receives every check-in outcome.
type AuditLog interface {
	Record(sessionID, studentID int, tokenFingerprint, outcome string)
}

// Validator turns a scanned (token, student) pair into at most one
// attendance record. It holds no locks and no cross-request state; the
// uniqueness guarantee comes entirely from the store's atomic insert, so
// any number of validator instances can run concurrently.
type Validator struct {
	tokens      tokens.Store
	attendance  Store
	sessions    tokens.SessionDirectory
	audit       AuditLog
	gracePeriod time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

func NewValidator(tokenStore tokens.Store, attendanceStore Store, sessions tokens.SessionDirectory, audit AuditLog, gracePeriod time.Duration, logger *zap.Logger) *Validator {
	return &Validator{
		tokens:      tokenStore,
		attendance:  attendanceStore,
		sessions:    sessions,
		audit:       audit,
		gracePeriod: gracePeriod,
		logger:      logger,
		now:         time.Now,
	}
}

// SetNow overrides the validator's clock. Tests use this to drive the
// expiry and grace-window decisions deterministically.
func (v *Validator) SetNow(now func() time.Time) {
	v.now = now
}

// CheckIn validates the scanned token and commits the student's attendance.
// markedBy is the authenticated caller: the student themselves on a self
// scan, or the faculty member submitting on the student's behalf. A repeat
// scan for an already-marked pair is not an error: the existing record
// comes back with Created=false, so client retries are safe.
func (v *Validator) CheckIn(tokenValue string, studentID, markedBy int) (*models.CheckinResponse, error) {
	now := v.now()
	fingerprint := tokens.Fingerprint(tokenValue)

	token, err := v.tokens.GetByValue(tokenValue)
	if err != nil {
		return nil, err
	}
	if token == nil {
		v.audit.Record(0, studentID, fingerprint, OutcomeInvalidToken)
		return nil, tokens.ErrInvalidToken
	}

	// A superseded token is rejected immediately, even before its own
	// expiry. That is what makes rotation defeat screenshot sharing.
	if !token.Active(now) {
		v.audit.Record(token.SessionID, studentID, fingerprint, OutcomeTokenExpired)
		return nil, tokens.ErrTokenExpired
	}

	session, err := v.sessions.GetClassSession(token.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		v.audit.Record(token.SessionID, studentID, fingerprint, OutcomeInvalidToken)
		return nil, tokens.ErrInvalidToken
	}
	if session.Ended(now) {
		v.audit.Record(session.ID, studentID, fingerprint, OutcomeSessionEnded)
		return nil, tokens.ErrSessionClosed
	}

	status := models.StatusPresent
	if now.After(session.StartsAt.Add(v.gracePeriod)) {
		status = models.StatusLate
	}

	created, record, err := v.attendance.InsertIfAbsent(session.ID, studentID, status, now, markedBy)
	if err != nil {
		return nil, err
	}

	if created {
		v.audit.Record(session.ID, studentID, fingerprint, OutcomeMarked)
		v.logger.Info("attendance marked",
			zap.Int("session_id", session.ID),
			zap.Int("student_id", studentID),
			zap.String("status", record.Status),
		)
	} else {
		v.audit.Record(session.ID, studentID, fingerprint, OutcomeAlreadySet)
	}

	return &models.CheckinResponse{Status: record.Status, Created: created}, nil
}
