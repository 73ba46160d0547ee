package session

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/leasekit/pkg/activity"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithConfig sets custom configuration
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.config = cfg
	}
}

// WithActivityBus sets the bus Run subscribes to for liveness signals
func WithActivityBus(bus activity.Bus) Option {
	return func(m *Manager) {
		m.bus = bus
	}
}

// WithNavigator sets where SignOut sends the caller
func WithNavigator(nav Navigator) Option {
	return func(m *Manager) {
		m.navigator = nav
	}
}

// WithStateListener registers fn to be called on every state transition
func WithStateListener(fn func(State, Status)) Option {
	return func(m *Manager) {
		m.listeners = append(m.listeners, fn)
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Navigator moves the caller to another view.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string) error

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(ctx context.Context, path string) error {
	return f(ctx, path)
}

type noopNavigator struct{}

func (noopNavigator) Navigate(context.Context, string) error { return nil }
