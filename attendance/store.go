package attendance

import (
	"database/sql"
	"time"

	"rollcall_backend/models"
)

// Store is the persistence boundary for attendance records. InsertIfAbsent
// must be a single atomic conditional write backed by the unique constraint
// on (session_id, student_id); a check-then-insert from the caller would
// reopen the double check-in race.
type Store interface {
	InsertIfAbsent(sessionID, studentID int, status string, markedAt time.Time, markedBy int) (bool, *models.AttendanceRecord, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// InsertIfAbsent writes the record unless one already exists for the
// (session, student) pair. On conflict it returns the surviving record with
// created=false; the loser of a concurrent race reads the winner's row.
func (s *PostgresStore) InsertIfAbsent(sessionID, studentID int, status string, markedAt time.Time, markedBy int) (bool, *models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := s.db.QueryRow(`
        INSERT INTO attendances (session_id, student_id, status, marked_at, marked_by, marked_via)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (session_id, student_id) DO NOTHING
        RETURNING id, session_id, student_id, status, marked_at, marked_by, marked_via
    `, sessionID, studentID, status, markedAt, markedBy, models.MarkedViaCheckin).Scan(
		&rec.ID, &rec.SessionID, &rec.StudentID, &rec.Status, &rec.MarkedAt, &rec.MarkedBy, &rec.MarkedVia)
	if err == nil {
		return true, &rec, nil
	}
	if err != sql.ErrNoRows {
		return false, nil, err
	}

	// Conflict path: the row already existed.
	err = s.db.QueryRow(`
        SELECT id, session_id, student_id, status, marked_at, marked_by, marked_via
        FROM attendances
        WHERE session_id = $1 AND student_id = $2
    `, sessionID, studentID).Scan(
		&rec.ID, &rec.SessionID, &rec.StudentID, &rec.Status, &rec.MarkedAt, &rec.MarkedBy, &rec.MarkedVia)
	if err != nil {
		return false, nil, err
	}
	return false, &rec, nil
}
