package eventbus

import "testing"

func TestTypedBusPublishSubscribe(t *testing.T) {
	bus := NewTyped[string]()
	ch := bus.Subscribe()
	bus.Publish("hello")
	v := <-ch
	if v != "hello" {
		t.Fatalf("expected hello got %v", v)
	}
	bus.Unsubscribe(ch)
}

func TestTypedBusClose(t *testing.T) {
	bus := NewTyped[int]()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	bus.Publish(1)
}

func TestTypedBusDropsWhenFull(t *testing.T) {
	bus := NewTypedWithBuffer[int](2)
	slow := bus.Subscribe()
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}
	if d := bus.Dropped(); d != 3 {
		t.Fatalf("expected 3 dropped got %d", d)
	}
	if v := <-slow; v != 0 {
		t.Fatalf("expected oldest event first, got %d", v)
	}
}

func TestNewTypedWithBufferMinimum(t *testing.T) {
	bus := NewTypedWithBuffer[int](0)
	ch := bus.Subscribe()
	bus.Publish(7)
	if v := <-ch; v != 7 {
		t.Fatalf("expected 7 got %d", v)
	}
	if bus.Dropped() != 0 {
		t.Fatalf("unexpected drop")
	}
}
