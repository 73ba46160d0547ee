package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/leasekit/pkg/activity"
	"github.com/dmitrymomot/leasekit/pkg/logger"
)

// Manager drives the session lifecycle: sign-in, validation, activity
// refresh and sign-out.
type Manager struct {
	store     *Store
	config    Config
	bus       activity.Bus
	navigator Navigator
	listeners []func(State, Status)
	logger    *slog.Logger

	mu        sync.Mutex
	state     State
	lastTouch time.Time
}

// New creates a manager over store.
func New(store *Store, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		config:    DefaultConfig(),
		navigator: noopNavigator{},
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.logger = m.logger.With(logger.Component("session"))

	return m
}

// State returns the last observed lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SignIn starts an ephemeral session in the tab tier. The browser tier is
// left untouched.
func (m *Manager) SignIn(ctx context.Context, id Identity, token string) error {
	return m.start(ctx, id, token, TierEphemeral)
}

// Remember starts a persistent session in the browser tier that survives
// restarts until PersistentLifetime elapses.
func (m *Manager) Remember(ctx context.Context, id Identity, token string) error {
	return m.start(ctx, id, token, TierPersistent)
}

func (m *Manager) start(ctx context.Context, id Identity, token string, tier Tier) error {
	if err := id.validate(); err != nil {
		return err
	}

	now := m.store.Now()
	rec := &Record{
		ID:             uuid.New(),
		Identity:       id,
		Token:          token,
		IssuedAt:       now,
		LastActivityAt: now,
		Tier:           tier,
	}
	if tier == TierPersistent {
		rec.AbsoluteExpiryAt = now.Add(m.config.PersistentLifetime)
	}

	if err := m.store.Put(ctx, rec); err != nil {
		return err
	}

	m.mu.Lock()
	m.lastTouch = now
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "session started", logger.Tier(tier.String()))
	m.refresh(ctx)
	return nil
}

// Check validates the authoritative record. A valid record counts as
// activity. An expired record removes only itself, so a valid persistent
// record behind an idle tab record takes over on the next Check. Check never
// fails: any problem is reported as unauthenticated.
func (m *Manager) Check(ctx context.Context) Status {
	status := m.verify(ctx)
	if status.Authenticated {
		if err := m.RecordActivity(ctx); err != nil {
			m.logger.DebugContext(ctx, "activity refresh failed", logger.Error(err))
		}
	}
	return status
}

// verify reports the current status without counting it as activity.
func (m *Manager) verify(ctx context.Context) Status {
	rec, err := m.store.Get(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoStorage):
		m.transition(ctx, Status{}, false)
		return Status{}
	case errors.Is(err, ErrSessionExpired):
		m.logger.DebugContext(ctx, "session expired", logger.Error(err))
		if cerr := m.store.ClearLegacy(ctx); cerr != nil {
			m.logger.WarnContext(ctx, "failed to clear legacy keys", logger.Error(cerr))
		}
		m.transition(ctx, Status{}, false)
		return Status{}
	default:
		if !errors.Is(err, ErrSessionNotFound) {
			m.logger.DebugContext(ctx, "session invalidated", logger.Error(err))
		}
		if cerr := m.store.Clear(ctx); cerr != nil {
			m.logger.WarnContext(ctx, "failed to clear stale session", logger.Error(cerr))
		}
		m.transition(ctx, Status{}, false)
		return Status{}
	}

	status := statusOf(rec)
	m.transition(ctx, status, false)
	return status
}

// RecordActivity moves the authoritative record's LastActivityAt to now.
// Writes closer together than ActivityThreshold are skipped.
func (m *Manager) RecordActivity(ctx context.Context) error {
	now := m.store.Now()

	m.mu.Lock()
	if m.config.ActivityThreshold > 0 && !m.lastTouch.IsZero() && now.Sub(m.lastTouch) < m.config.ActivityThreshold {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if _, err := m.store.Touch(ctx, now); err != nil {
		if errors.Is(err, ErrSessionExpired) {
			m.transition(ctx, Status{}, false)
		}
		return err
	}

	m.mu.Lock()
	m.lastTouch = now
	m.mu.Unlock()
	return nil
}

// SignOut removes both tiers and legacy keys, then navigates to SignInPath.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.lastTouch = time.Time{}
	m.mu.Unlock()

	m.transition(ctx, Status{}, false)
	m.logger.InfoContext(ctx, "signed out")

	return m.navigator.Navigate(ctx, m.config.SignInPath)
}

// Close ends the tab: the ephemeral tier is destroyed and an ephemeral
// session becomes unauthenticated. A persistent record stays in storage and
// is picked up by the next Check.
func (m *Manager) Close(ctx context.Context) error {
	if err := m.store.ClearTier(ctx, TierEphemeral); err != nil {
		return err
	}
	if m.State() == StateEphemeral {
		m.transition(ctx, Status{}, false)
	}
	return nil
}

// Run checks the session once, then re-validates every CheckInterval and
// records activity for qualifying bus signals. It returns when ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	m.Check(ctx)

	var signals <-chan activity.Signal
	if m.bus != nil {
		sub := m.bus.Subscribe(ctx)
		defer sub.Close()
		signals = sub.Signals()
	}

	interval := m.config.CheckInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.verify(ctx)
		case sig, ok := <-signals:
			if !ok {
				signals = nil
				continue
			}
			if !sig.Kind.Qualifies() {
				continue
			}
			if err := m.RecordActivity(ctx); err != nil && !isUnauthenticated(err) {
				m.logger.WarnContext(ctx, "failed to record activity", logger.Error(err))
			}
		}
	}
}

// refresh re-reads the status after a sign-in without touching activity or
// clearing state.
func (m *Manager) refresh(ctx context.Context) {
	rec, err := m.store.Get(ctx)
	if err != nil {
		m.transition(ctx, Status{}, true)
		return
	}
	m.transition(ctx, statusOf(rec), true)
}

// transition moves the manager to the state of status and notifies
// listeners. Outside a sign-in, a switch between the ephemeral and the
// persistent state is routed through StateUnauthenticated.
func (m *Manager) transition(ctx context.Context, status Status, signIn bool) {
	next := status.State()

	m.mu.Lock()
	prev := m.state
	m.state = next
	m.mu.Unlock()

	if prev == next {
		return
	}

	steps := []Status{status}
	if !signIn && !allowed(prev, next) {
		steps = []Status{{}, status}
	}

	from := prev
	for _, step := range steps {
		to := step.State()
		m.logger.DebugContext(ctx, "session state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
		for _, fn := range m.listeners {
			fn(to, step)
		}
		from = to
	}
}

func isUnauthenticated(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrNoStorage)
}
