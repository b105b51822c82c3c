package bus

import (
	"testing"
	"time"
)

func recv(t *testing.T, values <-chan int) int {
	t.Helper()
	select {
	case value, ok := <-values:
		if !ok {
			t.Fatal("stream closed unexpectedly")
		}
		return value
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	return 0
}

func TestPublishPreservesOrder(t *testing.T) {
	events := New[int]()
	defer events.Close()

	first, cancelFirst := events.Subscribe()
	defer cancelFirst()
	second, cancelSecond := events.Subscribe()
	defer cancelSecond()

	for i := 0; i < 100; i++ {
		events.Publish(i)
	}
	for i := 0; i < 100; i++ {
		if got := recv(t, first); got != i {
			t.Fatalf("first subscriber: got %d, want %d", got, i)
		}
		if got := recv(t, second); got != i {
			t.Fatalf("second subscriber: got %d, want %d", got, i)
		}
	}
}

func TestSlowSubscriberDoesNotBlockOthers(t *testing.T) {
	events := New[int]()
	defer events.Close()

	// Never read from this one.
	_, cancelSlow := events.Subscribe()
	defer cancelSlow()

	fast, cancelFast := events.Subscribe()
	defer cancelFast()

	for i := 0; i < 50; i++ {
		events.Publish(i)
	}
	for i := 0; i < 50; i++ {
		if got := recv(t, fast); got != i {
			t.Fatalf("fast subscriber: got %d, want %d", got, i)
		}
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	events := New[int]()
	defer events.Close()

	values, cancel := events.Subscribe()
	events.Publish(1)
	if got := recv(t, values); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}

	cancel()
	events.Publish(2)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case value, ok := <-values:
			if !ok {
				return
			}
			if value == 2 {
				t.Fatal("received a value published after cancel")
			}
		case <-deadline:
			t.Fatal("stream not closed after cancel")
		}
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	events := New[string]()
	values, cancel := events.Subscribe()
	defer cancel()

	events.Publish("last")
	events.Close()

	// Anything still in flight may arrive, but the stream must close.
	sawClose := false
	deadline := time.After(2 * time.Second)
	for !sawClose {
		select {
		case _, ok := <-values:
			if !ok {
				sawClose = true
			}
		case <-deadline:
			t.Fatal("stream not closed after Close")
		}
	}

	// Publishing after Close must not panic.
	events.Publish("ignored")
}

func TestSubscribeAfterClose(t *testing.T) {
	events := New[int]()
	events.Close()

	values, cancel := events.Subscribe()
	defer cancel()

	select {
	case _, ok := <-values:
		if ok {
			t.Fatal("unexpected value from closed bus")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscription on a closed bus should close immediately")
	}
}
