package session_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/leasekit/pkg/session"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newRecord(tier session.Tier, email string, at time.Time) *session.Record {
	rec := &session.Record{
		ID:             uuid.New(),
		Identity:       session.Identity{Email: email, Name: "Test", Role: "tenant"},
		Token:          "tok-" + email,
		IssuedAt:       at,
		LastActivityAt: at,
		Tier:           tier,
	}
	if tier == session.TierPersistent {
		rec.AbsoluteExpiryAt = at.Add(30 * 24 * time.Hour)
	}
	return rec
}

func writeRaw(t *testing.T, s session.Storage, key string, rec *session.Record) {
	t.Helper()
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), key, string(b)))
}

func TestStore_Get(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("no tab storage", func(t *testing.T) {
		store := session.NewStore(nil, session.NewMemoryStorage())

		_, err := store.Get(ctx)
		assert.ErrorIs(t, err, session.ErrNoStorage)
	})

	t.Run("empty tiers", func(t *testing.T) {
		store := session.NewStore(session.NewMemoryStorage(), session.NewMemoryStorage())

		_, err := store.Get(ctx)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("ephemeral tier takes precedence", func(t *testing.T) {
		clock := newFakeClock()
		tab, browser := session.NewMemoryStorage(), session.NewMemoryStorage()
		store := session.NewStore(tab, browser, session.WithClock(clock.Now))

		writeRaw(t, tab, session.KeySession, newRecord(session.TierEphemeral, "tab@example.com", clock.Now()))
		writeRaw(t, browser, session.KeyPersistentSession, newRecord(session.TierPersistent, "browser@example.com", clock.Now()))

		rec, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "tab@example.com", rec.Identity.Email)
		assert.Equal(t, session.TierEphemeral, rec.Tier)
	})

	t.Run("falls back to persistent tier", func(t *testing.T) {
		clock := newFakeClock()
		browser := session.NewMemoryStorage()
		store := session.NewStore(session.NewMemoryStorage(), browser, session.WithClock(clock.Now))

		writeRaw(t, browser, session.KeyPersistentSession, newRecord(session.TierPersistent, "browser@example.com", clock.Now()))

		rec, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "browser@example.com", rec.Identity.Email)
		assert.Equal(t, session.TierPersistent, rec.Tier)
	})

	t.Run("inactivity expiry removes the record", func(t *testing.T) {
		clock := newFakeClock()
		tab := session.NewMemoryStorage()
		store := session.NewStore(tab, nil, session.WithClock(clock.Now))

		writeRaw(t, tab, session.KeySession, newRecord(session.TierEphemeral, "a@example.com", clock.Now()))
		clock.Advance(30 * time.Minute)

		_, err := store.Get(ctx)
		assert.ErrorIs(t, err, session.ErrSessionExpired)

		_, err = tab.Get(ctx, session.KeySession)
		assert.ErrorIs(t, err, session.ErrKeyNotFound)
	})

	t.Run("absolute expiry overrides recent activity", func(t *testing.T) {
		clock := newFakeClock()
		browser := session.NewMemoryStorage()
		store := session.NewStore(session.NewMemoryStorage(), browser, session.WithClock(clock.Now))

		rec := newRecord(session.TierPersistent, "a@example.com", clock.Now().Add(-31*24*time.Hour))
		rec.LastActivityAt = clock.Now().Add(-time.Minute)
		writeRaw(t, browser, session.KeyPersistentSession, rec)

		_, err := store.Get(ctx)
		assert.ErrorIs(t, err, session.ErrSessionExpired)

		_, err = browser.Get(ctx, session.KeyPersistentSession)
		assert.ErrorIs(t, err, session.ErrKeyNotFound)
	})

	t.Run("corrupt value is cleared and treated as absent", func(t *testing.T) {
		clock := newFakeClock()
		tab, browser := session.NewMemoryStorage(), session.NewMemoryStorage()
		store := session.NewStore(tab, browser, session.WithClock(clock.Now))

		require.NoError(t, tab.Set(ctx, session.KeySession, "{not json"))
		writeRaw(t, browser, session.KeyPersistentSession, newRecord(session.TierPersistent, "b@example.com", clock.Now()))

		rec, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "b@example.com", rec.Identity.Email)

		_, err = tab.Get(ctx, session.KeySession)
		assert.ErrorIs(t, err, session.ErrKeyNotFound)
	})

	t.Run("record without identity is corrupt", func(t *testing.T) {
		tab := session.NewMemoryStorage()
		store := session.NewStore(tab, nil)

		require.NoError(t, tab.Set(ctx, session.KeySession, `{"id":"`+uuid.NewString()+`"}`))

		_, err := store.Get(ctx)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
		assert.Equal(t, 0, tab.Len())
	})
}

func TestStore_Touch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("moves activity forward", func(t *testing.T) {
		clock := newFakeClock()
		tab := session.NewMemoryStorage()
		store := session.NewStore(tab, nil, session.WithClock(clock.Now))

		rec := newRecord(session.TierEphemeral, "a@example.com", clock.Now())
		require.NoError(t, store.Put(ctx, rec))

		clock.Advance(time.Second)
		touched, err := store.Touch(ctx, clock.Now())
		require.NoError(t, err)
		assert.True(t, touched.LastActivityAt.After(rec.LastActivityAt))

		stored, err := store.Get(ctx)
		require.NoError(t, err)
		assert.True(t, stored.LastActivityAt.Equal(clock.Now()))
	})

	t.Run("never moves activity backwards", func(t *testing.T) {
		clock := newFakeClock()
		store := session.NewStore(session.NewMemoryStorage(), nil, session.WithClock(clock.Now))

		rec := newRecord(session.TierEphemeral, "a@example.com", clock.Now())
		require.NoError(t, store.Put(ctx, rec))

		touched, err := store.Touch(ctx, clock.Now().Add(-5*time.Minute))
		require.NoError(t, err)
		assert.True(t, touched.LastActivityAt.Equal(rec.LastActivityAt))
	})

	t.Run("touches the persistent tier when it is authoritative", func(t *testing.T) {
		clock := newFakeClock()
		browser := session.NewMemoryStorage()
		store := session.NewStore(session.NewMemoryStorage(), browser, session.WithClock(clock.Now))

		require.NoError(t, store.Put(ctx, newRecord(session.TierPersistent, "p@example.com", clock.Now())))

		clock.Advance(10 * time.Minute)
		_, err := store.Touch(ctx, clock.Now())
		require.NoError(t, err)

		raw, err := browser.Get(ctx, session.KeyPersistentSession)
		require.NoError(t, err)

		var stored session.Record
		require.NoError(t, json.Unmarshal([]byte(raw), &stored))
		assert.True(t, stored.LastActivityAt.Equal(clock.Now()))
	})

	t.Run("no record", func(t *testing.T) {
		store := session.NewStore(session.NewMemoryStorage(), nil)

		_, err := store.Touch(ctx, time.Now())
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	tab, browser := session.NewMemoryStorage(), session.NewMemoryStorage()
	store := session.NewStore(tab, browser, session.WithClock(clock.Now))

	require.NoError(t, store.Put(ctx, newRecord(session.TierEphemeral, "a@example.com", clock.Now())))
	require.NoError(t, store.Put(ctx, newRecord(session.TierPersistent, "a@example.com", clock.Now())))
	for _, k := range session.LegacyKeys {
		require.NoError(t, tab.Set(ctx, k, `{"email":"a@example.com"}`))
		require.NoError(t, browser.Set(ctx, k, `{"email":"a@example.com"}`))
	}

	require.NoError(t, store.Clear(ctx))

	assert.Equal(t, 0, tab.Len())
	assert.Equal(t, 0, browser.Len())
}

func TestStore_ClearTier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	store := session.NewStore(session.NewMemoryStorage(), session.NewMemoryStorage(), session.WithClock(clock.Now))

	require.NoError(t, store.Put(ctx, newRecord(session.TierEphemeral, "tab@example.com", clock.Now())))
	require.NoError(t, store.Put(ctx, newRecord(session.TierPersistent, "browser@example.com", clock.Now())))

	require.NoError(t, store.ClearTier(ctx, session.TierEphemeral))

	rec, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "browser@example.com", rec.Identity.Email)
}
