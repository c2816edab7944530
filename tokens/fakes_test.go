package tokens

import (
	"sync"
	"time"

	"rollcall_backend/models"
)

// fakeStore is an in-memory Store with the same one-unsuperseded-token rule
// the Postgres partial unique index enforces.
type fakeStore struct {
	mu     sync.Mutex
	nextID int
	rows   []*models.SessionToken
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (s *fakeStore) GetByValue(token string) (*models.SessionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.Token == token {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetActiveForSession(sessionID int, now time.Time) (*models.SessionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.SessionID == sessionID && row.SupersededAt == nil && now.Before(row.ExpiresAt) {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetCurrent(sessionID int) (*models.SessionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.SessionID == sessionID && row.SupersededAt == nil {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Create(sessionID int, token string, issuedAt, expiresAt time.Time) (*models.SessionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.SessionID == sessionID && row.SupersededAt == nil {
			return nil, ErrDuplicateActiveToken
		}
	}
	row := &models.SessionToken{
		ID:        s.nextID,
		SessionID: sessionID,
		Token:     token,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}
	s.nextID++
	s.rows = append(s.rows, row)
	copied := *row
	return &copied, nil
}

func (s *fakeStore) Supersede(tokenID int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.ID == tokenID && row.SupersededAt == nil {
			when := at
			row.SupersededAt = &when
		}
	}
	return nil
}

// unsupersededCount reports how many tokens for the session are not yet
// superseded, which the rotation invariant says is at most one.
func (s *fakeStore) unsupersededCount(sessionID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, row := range s.rows {
		if row.SessionID == sessionID && row.SupersededAt == nil {
			n++
		}
	}
	return n
}

// racingStore simulates another worker minting between this issuer's read
// and its insert: the first GetCurrent sees nothing even when a row exists.
type racingStore struct {
	*fakeStore
	readOnce bool
}

func (s *racingStore) GetCurrent(sessionID int) (*models.SessionToken, error) {
	if !s.readOnce {
		s.readOnce = true
		return nil, nil
	}
	return s.fakeStore.GetCurrent(sessionID)
}

type fakeDirectory struct {
	sessions map[int]*models.ClassSession
}

func (d *fakeDirectory) GetClassSession(sessionID int) (*models.ClassSession, error) {
	session, ok := d.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}
