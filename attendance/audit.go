package attendance

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Check-in outcomes recorded in the audit trail.
const (
	OutcomeMarked       = "marked"
	OutcomeAlreadySet   = "already_marked"
	OutcomeInvalidToken = "invalid_token"
	OutcomeTokenExpired = "token_expired"
	OutcomeSessionEnded = "session_ended"
	OutcomeOverride     = "override"
)

// Audit appends check-in outcomes to the attendance_audit table. Writes are
// best-effort: a failed audit write is logged and dropped, it never fails
// the check-in itself.
type Audit struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewAudit(db *sql.DB, logger *zap.Logger) *Audit {
	return &Audit{db: db, logger: logger}
}

// Record stores one outcome. Only the token fingerprint is persisted, never
// the raw token. sessionID of 0 means the token resolved to no session.
func (a *Audit) Record(sessionID, studentID int, tokenFingerprint, outcome string) {
	var sid interface{}
	if sessionID != 0 {
		sid = sessionID
	}
	_, err := a.db.Exec(`
        INSERT INTO attendance_audit (id, session_id, student_id, token_fingerprint, outcome, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, uuid.NewString(), sid, studentID, tokenFingerprint, outcome, time.Now())
	if err != nil {
		a.logger.Error("failed to write attendance audit entry",
			zap.Int("session_id", sessionID),
			zap.Int("student_id", studentID),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
	}
}
