// Package bus provides an in-process broadcast channel. Every subscriber
// receives the full published sequence in order; a slow subscriber queues
// behind its own goroutine and never delays the others.
package bus

import "sync"

// Bus fans out values of type T to any number of subscribers.
type Bus[T any] struct {
	mu     sync.Mutex
	subs   map[int]*subscriber[T]
	nextID int
	closed bool
}

type subscriber[T any] struct {
	mu    sync.Mutex
	cond  *sync.Cond
	queue []T
	done  bool
	stop  chan struct{}
	out   chan T
}

// New creates an empty bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[int]*subscriber[T])}
}

// Subscribe registers a new observer. The returned cancel function detaches
// the observer and closes its channel; it is safe to call more than once and
// while deliveries are in flight. Callers should cancel when the owning
// surface goes away so the pump goroutine can exit.
func (bus *Bus[T]) Subscribe() (<-chan T, func()) {
	sub := &subscriber[T]{
		out:  make(chan T, 1),
		stop: make(chan struct{}),
	}
	sub.cond = sync.NewCond(&sub.mu)

	bus.mu.Lock()
	if bus.closed {
		bus.mu.Unlock()
		close(sub.out)
		return sub.out, func() {}
	}
	id := bus.nextID
	bus.nextID++
	bus.subs[id] = sub
	bus.mu.Unlock()

	go sub.pump()

	cancel := func() {
		bus.mu.Lock()
		delete(bus.subs, id)
		bus.mu.Unlock()
		sub.detach()
	}
	return sub.out, cancel
}

// Publish enqueues value for every current subscriber. The bus lock is held
// across the whole fan-out so all subscribers observe the same order.
func (bus *Bus[T]) Publish(value T) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if bus.closed {
		return
	}
	for _, sub := range bus.subs {
		sub.enqueue(value)
	}
}

// Close detaches every subscriber and makes further publishes no-ops.
func (bus *Bus[T]) Close() {
	bus.mu.Lock()
	if bus.closed {
		bus.mu.Unlock()
		return
	}
	bus.closed = true
	subs := bus.subs
	bus.subs = make(map[int]*subscriber[T])
	bus.mu.Unlock()

	for _, sub := range subs {
		sub.detach()
	}
}

func (sub *subscriber[T]) enqueue(value T) {
	sub.mu.Lock()
	if !sub.done {
		sub.queue = append(sub.queue, value)
		sub.cond.Signal()
	}
	sub.mu.Unlock()
}

func (sub *subscriber[T]) detach() {
	sub.mu.Lock()
	if sub.done {
		sub.mu.Unlock()
		return
	}
	sub.done = true
	close(sub.stop)
	sub.cond.Signal()
	sub.mu.Unlock()
}

// pump moves queued values to the subscriber channel, preserving order.
// After detach it stops immediately, so an abandoned receiver cannot wedge
// the goroutine.
func (sub *subscriber[T]) pump() {
	for {
		sub.mu.Lock()
		for len(sub.queue) == 0 && !sub.done {
			sub.cond.Wait()
		}
		if sub.done {
			sub.mu.Unlock()
			close(sub.out)
			return
		}
		value := sub.queue[0]
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()

		select {
		case sub.out <- value:
		case <-sub.stop:
			close(sub.out)
			return
		}
	}
}
