package tokens

import (
	"database/sql"
	"errors"
	"time"

	"rollcall_backend/models"

	"github.com/lib/pq"
)

// Store is the persistence boundary for session tokens. Implementations
// must give read-your-writes consistency for a supersede-then-create
// sequence and last-committed-write-wins visibility between the rotator's
// supersede and concurrent validator reads.
type Store interface {
	GetByValue(token string) (*models.SessionToken, error)
	GetActiveForSession(sessionID int, now time.Time) (*models.SessionToken, error)
	// GetCurrent returns the session's unsuperseded token even when it has
	// already expired, so the issuer can close it out before minting.
	GetCurrent(sessionID int) (*models.SessionToken, error)
	Create(sessionID int, token string, issuedAt, expiresAt time.Time) (*models.SessionToken, error)
	Supersede(tokenID int, at time.Time) error
}

// PostgresStore keeps tokens in the session_tokens table. The partial
// unique index on (session_id) WHERE superseded_at IS NULL enforces the
// one-active-token invariant at the database, so it holds across server
// instances.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetByValue(token string) (*models.SessionToken, error) {
	var t models.SessionToken
	err := s.db.QueryRow(`
        SELECT id, session_id, token, issued_at, expires_at, superseded_at
        FROM session_tokens
        WHERE token = $1
    `, token).Scan(&t.ID, &t.SessionID, &t.Token, &t.IssuedAt, &t.ExpiresAt, &t.SupersededAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) GetActiveForSession(sessionID int, now time.Time) (*models.SessionToken, error) {
	var t models.SessionToken
	err := s.db.QueryRow(`
        SELECT id, session_id, token, issued_at, expires_at, superseded_at
        FROM session_tokens
        WHERE session_id = $1 AND superseded_at IS NULL AND expires_at > $2
    `, sessionID, now).Scan(&t.ID, &t.SessionID, &t.Token, &t.IssuedAt, &t.ExpiresAt, &t.SupersededAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) GetCurrent(sessionID int) (*models.SessionToken, error) {
	var t models.SessionToken
	err := s.db.QueryRow(`
        SELECT id, session_id, token, issued_at, expires_at, superseded_at
        FROM session_tokens
        WHERE session_id = $1 AND superseded_at IS NULL
    `, sessionID).Scan(&t.ID, &t.SessionID, &t.Token, &t.IssuedAt, &t.ExpiresAt, &t.SupersededAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) Create(sessionID int, token string, issuedAt, expiresAt time.Time) (*models.SessionToken, error) {
	var t models.SessionToken
	err := s.db.QueryRow(`
        INSERT INTO session_tokens (session_id, token, issued_at, expires_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, session_id, token, issued_at, expires_at, superseded_at
    `, sessionID, token, issuedAt, expiresAt).Scan(
		&t.ID, &t.SessionID, &t.Token, &t.IssuedAt, &t.ExpiresAt, &t.SupersededAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "session_tokens_one_active" {
			return nil, ErrDuplicateActiveToken
		}
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) Supersede(tokenID int, at time.Time) error {
	// Already-superseded rows are left alone so the first supersession
	// timestamp survives concurrent rotation ticks.
	_, err := s.db.Exec(`
        UPDATE session_tokens
        SET superseded_at = $2
        WHERE id = $1 AND superseded_at IS NULL
    `, tokenID, at)
	return err
}
