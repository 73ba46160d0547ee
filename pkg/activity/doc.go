// Package activity carries user liveness signals from the places that observe
// them (pointer, keyboard, scroll and touch input) to the components that
// care, such as the session manager extending an idle timeout.
//
// Producers call Publish on a Bus; consumers Subscribe with a context and
// drain the returned channel. The in-memory bus never blocks a producer: when
// a subscriber's buffer is full the signal is dropped for that subscriber.
// Losing a signal is harmless because the next input event carries the same
// information.
//
//	bus := activity.NewMemoryBus(16)
//	defer bus.Close()
//
//	sub := bus.Subscribe(ctx)
//	go func() {
//		for sig := range sub.Signals() {
//			if sig.Kind.Qualifies() {
//				// extend the session
//			}
//		}
//	}()
//
//	_ = bus.Publish(ctx, activity.Signal{Kind: activity.KeyPress, At: time.Now()})
package activity
