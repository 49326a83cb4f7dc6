// Package eventbus carries dataset, report and request events from the
// producers to the metrics collector and other listeners.
package eventbus

import "context"

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus implements a simple publish/subscribe event bus.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default EventBus implementation using fan-out channels.
type Bus struct {
	*TypedBus[Event]
}

// New creates a new Bus.
func New() *Bus { return &Bus{NewTyped[Event]()} }

// NewWithBuffer creates a Bus whose subscribers hold up to n pending events.
func NewWithBuffer(n int) *Bus { return &Bus{NewTypedWithBuffer[Event](n)} }

// Listen subscribes to bus and calls fn for every event until ctx is done or
// the bus is closed. The subscription is registered before Listen returns;
// the returned channel is closed once the listener has stopped.
func Listen(ctx context.Context, bus EventBus, fn func(Event)) <-chan struct{} {
	done := make(chan struct{})
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				fn(ev)
			}
		}
	}()
	return done
}

// On adapts fn into a listener that only sees events of type T.
func On[T any](fn func(T)) func(Event) {
	return func(ev Event) {
		if e, ok := ev.(T); ok {
			fn(e)
		}
	}
}
