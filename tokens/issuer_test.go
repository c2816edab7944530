package tokens

import (
	"sync"
	"testing"
	"time"

	"rollcall_backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testExpiry   = 90 * time.Second
	testInterval = 60 * time.Second
)

func setupIssuer(t *testing.T) (*Issuer, *fakeStore, *time.Time) {
	t.Helper()

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now := start

	store := newFakeStore()
	directory := &fakeDirectory{sessions: map[int]*models.ClassSession{
		1: {ID: 1, CourseID: 1, Title: "Lecture 4", StartsAt: start, EndsAt: start.Add(time.Hour)},
	}}

	issuer := NewIssuer(store, directory, testExpiry, testInterval, zap.NewNop())
	nowPtr := &now
	issuer.SetNow(func() time.Time { return *nowPtr })
	return issuer, store, nowPtr
}

func TestGetOrCreateActiveToken(t *testing.T) {
	t.Run("UnknownSession", func(t *testing.T) {
		issuer, _, _ := setupIssuer(t)
		_, err := issuer.GetOrCreateActiveToken(42)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("EndedSession", func(t *testing.T) {
		issuer, _, now := setupIssuer(t)
		*now = now.Add(2 * time.Hour)
		_, err := issuer.GetOrCreateActiveToken(1)
		assert.ErrorIs(t, err, ErrSessionClosed)
	})

	t.Run("MintsOnFirstRequest", func(t *testing.T) {
		issuer, _, now := setupIssuer(t)
		token, err := issuer.GetOrCreateActiveToken(1)
		require.NoError(t, err)
		require.NotNil(t, token)
		assert.NotEmpty(t, token.Token)
		assert.Equal(t, now.Add(testExpiry), token.ExpiresAt)
		assert.Nil(t, token.SupersededAt)
	})

	t.Run("ReturnsExistingWhileActive", func(t *testing.T) {
		issuer, _, now := setupIssuer(t)
		first, err := issuer.GetOrCreateActiveToken(1)
		require.NoError(t, err)

		*now = now.Add(30 * time.Second)
		second, err := issuer.GetOrCreateActiveToken(1)
		require.NoError(t, err)
		assert.Equal(t, first.Token, second.Token)
	})

	t.Run("RecoversFromMintRace", func(t *testing.T) {
		// Another worker mints between this issuer's read and its insert;
		// the insert hits the one-active-token constraint and the caller
		// must get the winner's token, not a 500.
		issuer, store, now := setupIssuer(t)
		raced := &racingStore{fakeStore: store}
		issuer = NewIssuer(raced, issuer.sessions, testExpiry, testInterval, zap.NewNop())
		nowPtr := now
		issuer.SetNow(func() time.Time { return *nowPtr })

		winner, err := store.Create(1, "winner-token", *now, now.Add(testExpiry))
		require.NoError(t, err)

		token, err := issuer.GetOrCreateActiveToken(1)
		require.NoError(t, err)
		assert.Equal(t, winner.Token, token.Token)
		assert.Equal(t, 1, store.unsupersededCount(1))
	})

	t.Run("ConcurrentFirstFetches", func(t *testing.T) {
		issuer, store, _ := setupIssuer(t)

		var wg sync.WaitGroup
		results := make(chan *models.SessionToken, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				token, err := issuer.GetOrCreateActiveToken(1)
				assert.NoError(t, err)
				results <- token
			}()
		}
		wg.Wait()
		close(results)

		for token := range results {
			require.NotNil(t, token)
		}
		assert.Equal(t, 1, store.unsupersededCount(1))
	})

	t.Run("ReplacesExpiredToken", func(t *testing.T) {
		issuer, store, now := setupIssuer(t)
		first, err := issuer.GetOrCreateActiveToken(1)
		require.NoError(t, err)

		*now = now.Add(testExpiry + time.Second)
		second, err := issuer.GetOrCreateActiveToken(1)
		require.NoError(t, err)
		assert.NotEqual(t, first.Token, second.Token)
		assert.Equal(t, 1, store.unsupersededCount(1), "expired token must be closed out")
	})
}

func TestRotate(t *testing.T) {
	t.Run("SupersedesAndMints", func(t *testing.T) {
		issuer, store, now := setupIssuer(t)
		first, err := issuer.GetOrCreateActiveToken(1)
		require.NoError(t, err)

		*now = now.Add(testInterval)
		rotated, err := issuer.Rotate(1, false)
		require.NoError(t, err)
		require.NotNil(t, rotated)
		assert.NotEqual(t, first.Token, rotated.Token)

		old, err := store.GetByValue(first.Token)
		require.NoError(t, err)
		require.NotNil(t, old.SupersededAt)
		assert.Equal(t, *now, *old.SupersededAt)
		assert.False(t, old.Active(*now), "superseded token is dead immediately")
		assert.Equal(t, 1, store.unsupersededCount(1))
	})

	t.Run("ScheduledTickIsIdempotent", func(t *testing.T) {
		issuer, store, now := setupIssuer(t)
		_, err := issuer.GetOrCreateActiveToken(1)
		require.NoError(t, err)

		*now = now.Add(testInterval)
		first, err := issuer.Rotate(1, false)
		require.NoError(t, err)

		// A doubled tick within the same interval leaves the fresh token alone.
		second, err := issuer.Rotate(1, false)
		require.NoError(t, err)
		assert.Equal(t, first.Token, second.Token)
		assert.Equal(t, 1, store.unsupersededCount(1))
	})

	t.Run("ScheduledRotatesMisalignedToken", func(t *testing.T) {
		// A token minted between ticks (t=1, expires t=91) would die before
		// the t=120 tick; the t=60 tick must replace it rather than leave a
		// window with no valid token.
		issuer, store, now := setupIssuer(t)
		*now = now.Add(time.Second)
		first, err := issuer.GetOrCreateActiveToken(1)
		require.NoError(t, err)

		*now = now.Add(59 * time.Second)
		rotated, err := issuer.Rotate(1, false)
		require.NoError(t, err)
		require.NotNil(t, rotated)
		assert.NotEqual(t, first.Token, rotated.Token)

		// The session stays covered past the old token's t=91 expiry.
		*now = now.Add(40 * time.Second)
		active, err := store.GetActiveForSession(1, *now)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, rotated.Token, active.Token)
	})

	t.Run("ScheduledNoTokenIsNoop", func(t *testing.T) {
		issuer, store, _ := setupIssuer(t)
		token, err := issuer.Rotate(1, false)
		require.NoError(t, err)
		assert.Nil(t, token)
		assert.Equal(t, 0, store.unsupersededCount(1))
	})

	t.Run("ManualRotationAlwaysReplaces", func(t *testing.T) {
		issuer, store, _ := setupIssuer(t)
		first, err := issuer.GetOrCreateActiveToken(1)
		require.NoError(t, err)

		// No time has passed, force anyway.
		rotated, err := issuer.Rotate(1, true)
		require.NoError(t, err)
		assert.NotEqual(t, first.Token, rotated.Token)
		assert.Equal(t, 1, store.unsupersededCount(1))
	})

	t.Run("ManualRotationMintsWhenNoneExists", func(t *testing.T) {
		issuer, _, _ := setupIssuer(t)
		token, err := issuer.Rotate(1, true)
		require.NoError(t, err)
		require.NotNil(t, token)
		assert.NotEmpty(t, token.Token)
	})

	t.Run("EndedSession", func(t *testing.T) {
		issuer, _, now := setupIssuer(t)
		_, err := issuer.GetOrCreateActiveToken(1)
		require.NoError(t, err)

		*now = now.Add(2 * time.Hour)
		_, err = issuer.Rotate(1, false)
		assert.ErrorIs(t, err, ErrSessionClosed)
	})
}

// TestRotationFreshness walks a session through several rotation ticks and
// checks that exactly one token is active at every step.
func TestRotationFreshness(t *testing.T) {
	issuer, store, now := setupIssuer(t)

	_, err := issuer.GetOrCreateActiveToken(1)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		*now = now.Add(testInterval)
		_, err := issuer.Rotate(1, false)
		require.NoError(t, err)

		active, err := store.GetActiveForSession(1, *now)
		require.NoError(t, err)
		require.NotNil(t, active, "a running session must always have an active token")
		assert.Equal(t, 1, store.unsupersededCount(1))
	}
}
