package activity

import (
	"context"
	"sync"
)

// MemoryBus is an in-process Bus. Signals are dropped for subscribers whose
// buffer is full. All methods are safe for concurrent use.
type MemoryBus struct {
	subs       map[*subscription]struct{}
	bufferSize int
	closed     bool
	mu         sync.RWMutex
	wg         sync.WaitGroup
}

var _ Bus = (*MemoryBus)(nil)

// NewMemoryBus creates a bus whose subscribers buffer up to bufferSize
// signals. A minimum of 1 is enforced.
func NewMemoryBus(bufferSize int) *MemoryBus {
	return &MemoryBus{
		subs:       make(map[*subscription]struct{}),
		bufferSize: max(bufferSize, 1),
	}
}

// Subscribe implements Bus. On a closed bus it returns an already closed
// subscription.
func (b *MemoryBus) Subscribe(ctx context.Context) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := newSubscription(b.bufferSize)
	if b.closed {
		sub.close()
		return sub
	}

	sub.onEnd = b.remove
	b.subs[sub] = struct{}{}

	if ctx.Done() != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			select {
			case <-ctx.Done():
				_ = sub.Close()
			case <-sub.done:
			}
		}()
	}

	return sub
}

// Publish implements Bus.
func (b *MemoryBus) Publish(_ context.Context, sig Signal) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	for sub := range b.subs {
		sub.send(sig)
	}
	return nil
}

// Len returns the number of active subscriptions.
func (b *MemoryBus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close implements Bus. It is safe to call multiple times.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	clear(b.subs)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}

	b.wg.Wait()
	return nil
}

func (b *MemoryBus) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, sub)
}
