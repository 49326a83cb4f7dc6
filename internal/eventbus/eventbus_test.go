package eventbus

import (
	"context"
	"testing"
	"time"
)

type loaded struct{ records int }

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish("hello")
	v := <-ch
	if v != "hello" {
		t.Fatalf("expected hello got %v", v)
	}
	bus.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after Unsubscribe")
	}
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	if _, ok := <-bus.Subscribe(); ok {
		t.Fatalf("expected closed channel from a closed bus")
	}
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}

func TestListenOn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bus := New()
	defer bus.Close()
	got := make(chan int, 2)
	done := Listen(ctx, bus, On(func(e loaded) { got <- e.records }))

	bus.Publish("ignored")
	bus.Publish(loaded{records: 42})
	select {
	case n := <-got:
		if n != 42 {
			t.Fatalf("expected 42 got %d", n)
		}
	case <-time.After(time.Second):
		t.Fatalf("event not delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("listener did not stop")
	}
	if n := bus.Subscribers(); n != 0 {
		t.Fatalf("expected listener unsubscribed, %d left", n)
	}
}

func TestListenStopsOnClose(t *testing.T) {
	bus := New()
	done := Listen(context.Background(), bus, func(Event) {})
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("listener did not stop on Close")
	}
}
