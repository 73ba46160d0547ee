package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultInactivityTimeout is used when a Store is created without one.
const DefaultInactivityTimeout = 30 * time.Minute

// Store resolves the two session tiers into a single authoritative record.
// The tab tier wins whenever it holds a record.
//
// Timestamps are persisted as wall-clock values. For the record this Store
// wrote last, idle time is measured against the in-process reading taken at
// write time, so clock adjustments between writes do not shift the timeout.
type Store struct {
	tab        Storage
	browser    Storage
	legacyKeys []string
	inactivity time.Duration
	now        func() time.Time

	mu   sync.Mutex
	mark writeMark
}

type writeMark struct {
	id   uuid.UUID
	at   time.Time
	tier Tier
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithInactivityTimeout sets how long a record may go without activity.
func WithInactivityTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.inactivity = d
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLegacyKeys overrides the keys removed alongside both tiers on Clear.
func WithLegacyKeys(keys ...string) StoreOption {
	return func(s *Store) {
		s.legacyKeys = keys
	}
}

// NewStore creates a store over the tab and browser tiers. A nil tab tier
// means the store runs outside a browsing context: every read reports
// ErrNoStorage. A nil browser tier disables persistent sessions.
func NewStore(tab, browser Storage, opts ...StoreOption) *Store {
	s := &Store{
		tab:        tab,
		browser:    browser,
		legacyKeys: LegacyKeys,
		inactivity: DefaultInactivityTimeout,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current time from the store clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// InactivityTimeout returns the configured idle limit.
func (s *Store) InactivityTimeout() time.Duration {
	return s.inactivity
}

// Get returns the authoritative record. An expired tab record is removed and
// reported as ErrSessionExpired without consulting the browser tier. Corrupt
// values are removed and treated as absent.
func (s *Store) Get(ctx context.Context) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(ctx)
}

func (s *Store) get(ctx context.Context) (*Record, error) {
	if s.tab == nil {
		return nil, ErrNoStorage
	}

	tiers := []struct {
		tier    Tier
		storage Storage
		key     string
	}{
		{TierEphemeral, s.tab, KeySession},
		{TierPersistent, s.browser, KeyPersistentSession},
	}

	now := s.now()
	for _, t := range tiers {
		if t.storage == nil {
			continue
		}

		raw, err := t.storage.Get(ctx, t.key)
		if errors.Is(err, ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		rec, err := decodeRecord(raw)
		if err != nil {
			if derr := t.storage.Delete(ctx, t.key); derr != nil {
				return nil, errors.Join(err, derr)
			}
			continue
		}
		rec.Tier = t.tier

		if !s.valid(rec, now) {
			if err := t.storage.Delete(ctx, t.key); err != nil {
				return nil, errors.Join(ErrSessionExpired, err)
			}
			if s.mark.id == rec.ID {
				s.mark = writeMark{}
			}
			return nil, ErrSessionExpired
		}

		return rec, nil
	}

	return nil, ErrSessionNotFound
}

// Put writes rec to the tier it names.
func (s *Store) Put(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, rec)
}

func (s *Store) put(ctx context.Context, rec *Record) error {
	storage, key := s.tier(rec.Tier)
	if storage == nil {
		return ErrNoStorage
	}

	raw, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	if es, ok := storage.(ExpiringStorage); ok && rec.Tier == TierPersistent && !rec.AbsoluteExpiryAt.IsZero() {
		err = es.SetUntil(ctx, key, raw, rec.AbsoluteExpiryAt)
	} else {
		err = storage.Set(ctx, key, raw)
	}
	if err != nil {
		return err
	}

	s.mark = writeMark{id: rec.ID, at: rec.LastActivityAt, tier: rec.Tier}
	return nil
}

// Touch moves LastActivityAt of the authoritative record forward to at and
// writes it back. Activity never moves backwards.
func (s *Store) Touch(ctx context.Context, at time.Time) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.get(ctx)
	if err != nil {
		return nil, err
	}

	last := rec.LastActivityAt
	if s.mark.id == rec.ID && s.mark.tier == rec.Tier && s.mark.at.Equal(last) {
		last = s.mark.at
	}
	if !at.After(last) {
		return rec, nil
	}

	rec.LastActivityAt = at
	if err := s.put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Clear removes both tiers and every legacy key.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mark = writeMark{}

	var errs []error
	if s.tab != nil {
		errs = append(errs, s.tab.Delete(ctx, append([]string{KeySession}, s.legacyKeys...)...))
	}
	if s.browser != nil {
		errs = append(errs, s.browser.Delete(ctx, append([]string{KeyPersistentSession}, s.legacyKeys...)...))
	}
	return errors.Join(errs...)
}

// ClearLegacy removes the legacy keys from both tiers and leaves the session
// records alone.
func (s *Store) ClearLegacy(ctx context.Context) error {
	if len(s.legacyKeys) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.tab != nil {
		errs = append(errs, s.tab.Delete(ctx, s.legacyKeys...))
	}
	if s.browser != nil {
		errs = append(errs, s.browser.Delete(ctx, s.legacyKeys...))
	}
	return errors.Join(errs...)
}

// ClearTier removes the record of one tier.
func (s *Store) ClearTier(ctx context.Context, tier Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	storage, key := s.tier(tier)
	if storage == nil {
		return nil
	}
	if s.mark.tier == tier {
		s.mark = writeMark{}
	}
	return storage.Delete(ctx, key)
}

func (s *Store) tier(t Tier) (Storage, string) {
	switch t {
	case TierEphemeral:
		return s.tab, KeySession
	case TierPersistent:
		return s.browser, KeyPersistentSession
	}
	return nil, ""
}

// valid measures idle time from the in-process write reading when rec is the
// record this store wrote last.
func (s *Store) valid(rec *Record, now time.Time) bool {
	if rec.Expired(now) {
		return false
	}
	last := rec.LastActivityAt
	if s.mark.id == rec.ID && s.mark.tier == rec.Tier && s.mark.at.Equal(last) {
		last = s.mark.at
	}
	return now.Sub(last) < s.inactivity
}
