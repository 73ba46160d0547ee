package activity

import (
	"context"
	"sync"
)

// Subscription receives signals from a Bus.
type Subscription interface {
	// Signals returns the receive channel. It is closed when the
	// subscription ends.
	Signals() <-chan Signal

	// Close ends the subscription. Safe to call more than once.
	Close() error
}

// Bus fans activity signals out to subscribers.
type Bus interface {
	// Publish delivers sig to every subscriber without blocking.
	Publish(ctx context.Context, sig Signal) error

	// Subscribe registers a subscriber for the lifetime of ctx.
	Subscribe(ctx context.Context) Subscription

	// Close ends all subscriptions.
	Close() error
}

type subscription struct {
	ch     chan Signal
	done   chan struct{}
	closed bool
	mu     sync.RWMutex
	onEnd  func(*subscription)
}

func newSubscription(bufferSize int) *subscription {
	return &subscription{
		ch:   make(chan Signal, bufferSize),
		done: make(chan struct{}),
	}
}

func (s *subscription) Signals() <-chan Signal {
	return s.ch
}

func (s *subscription) Close() error {
	if s.close() && s.onEnd != nil {
		s.onEnd(s)
	}
	return nil
}

// close reports whether this call closed the subscription.
func (s *subscription) close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.closed = true
	close(s.ch)
	close(s.done)
	return true
}

func (s *subscription) send(sig Signal) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- sig:
		return true
	default:
		return false
	}
}
