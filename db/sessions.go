package db

import (
	"database/sql"
	"time"

	"rollcall_backend/models"
)

// SessionDirectory reads class sessions for the token issuer and the
// check-in validator.
type SessionDirectory struct {
	db *sql.DB
}

func NewSessionDirectory(db *sql.DB) *SessionDirectory {
	return &SessionDirectory{db: db}
}

// GetClassSession returns the session with the given id, or nil if it does
// not exist.
func (d *SessionDirectory) GetClassSession(sessionID int) (*models.ClassSession, error) {
	var session models.ClassSession
	err := d.db.QueryRow(`
        SELECT id, course_id, title, starts_at, ends_at, created_by, created_at
        FROM class_sessions
        WHERE id = $1
    `, sessionID).Scan(
		&session.ID,
		&session.CourseID,
		&session.Title,
		&session.StartsAt,
		&session.EndsAt,
		&session.CreatedBy,
		&session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListRotatable returns the ids of sessions the rotation scheduler should
// visit: still running and holding an unsuperseded token. Sessions whose
// end time has passed drop out of rotation here.
func (d *SessionDirectory) ListRotatable(now time.Time) ([]int, error) {
	rows, err := d.db.Query(`
        SELECT s.id
        FROM class_sessions s
        WHERE s.ends_at > $1
        AND EXISTS (
            SELECT 1 FROM session_tokens t
            WHERE t.session_id = s.id AND t.superseded_at IS NULL
        )
    `, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
