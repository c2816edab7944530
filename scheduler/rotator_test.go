package scheduler

import (
	"sync"
	"testing"
	"time"

	"rollcall_backend/models"
	"rollcall_backend/tokens"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryTokenStore struct {
	mu     sync.Mutex
	nextID int
	rows   []*models.SessionToken
}

func (s *memoryTokenStore) GetByValue(token string) (*models.SessionToken, error) {
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

func (s *memoryTokenStore) GetActiveForSession(sessionID int, now time.Time) (*models.SessionToken, error) {
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

func (s *memoryTokenStore) GetCurrent(sessionID int) (*models.SessionToken, error) {
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

func (s *memoryTokenStore) Create(sessionID int, token string, issuedAt, expiresAt time.Time) (*models.SessionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	row := &models.SessionToken{
		ID:        s.nextID,
		SessionID: sessionID,
		Token:     token,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}
	s.rows = append(s.rows, row)
	copied := *row
	return &copied, nil
}

func (s *memoryTokenStore) Supersede(tokenID int, at time.Time) error {
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

type memoryDirectory struct {
	sessions map[int]*models.ClassSession
}

func (d *memoryDirectory) GetClassSession(sessionID int) (*models.ClassSession, error) {
	session, ok := d.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (d *memoryDirectory) ListRotatable(now time.Time) ([]int, error) {
	var ids []int
	for id, session := range d.sessions {
		if session.EndsAt.After(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func TestRotateAll(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now := start

	store := &memoryTokenStore{}
	directory := &memoryDirectory{sessions: map[int]*models.ClassSession{
		1: {ID: 1, StartsAt: start, EndsAt: start.Add(time.Hour)},
		2: {ID: 2, StartsAt: start, EndsAt: start.Add(time.Hour)},
	}}

	issuer := tokens.NewIssuer(store, directory, 90*time.Second, 60*time.Second, zap.NewNop())
	issuer.SetNow(func() time.Time { return now })

	first1, err := issuer.GetOrCreateActiveToken(1)
	require.NoError(t, err)
	first2, err := issuer.GetOrCreateActiveToken(2)
	require.NoError(t, err)

	rotator := NewRotator(issuer, directory, 60*time.Second, zap.NewNop())

	// One rotation interval later the tick must replace both tokens.
	now = start.Add(60 * time.Second)
	rotator.RotateAll()

	for id, old := range map[int]*models.SessionToken{1: first1, 2: first2} {
		stale, err := store.GetByValue(old.Token)
		require.NoError(t, err)
		assert.NotNil(t, stale.SupersededAt, "session %d token was not superseded", id)

		active, err := store.GetActiveForSession(id, now)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.NotEqual(t, old.Token, active.Token)
	}

	// An immediate second tick changes nothing.
	active1, err := store.GetActiveForSession(1, now)
	require.NoError(t, err)
	rotator.RotateAll()
	again, err := store.GetActiveForSession(1, now)
	require.NoError(t, err)
	assert.Equal(t, active1.Token, again.Token)
}
