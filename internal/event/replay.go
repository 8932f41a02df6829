package event

import "sync"

// Replay is a multicast stream that remembers the latest value. A new
// subscriber immediately receives the current value (when one has been
// published) followed by every subsequent value.
type Replay[T any] struct {
	mu   sync.Mutex
	bus  *Bus[T]
	last T
	has  bool
}

// NewReplay creates a replay-latest stream with no initial value.
func NewReplay[T any]() *Replay[T] {
	return &Replay[T]{bus: NewBus[T]()}
}

// Publish stores v as the latest value and fans it out to subscribers.
func (r *Replay[T]) Publish(v T) {
	r.mu.Lock()
	r.last = v
	r.has = true
	r.mu.Unlock()
	r.bus.Publish(v)
}

// Latest returns the most recent value and whether one exists.
func (r *Replay[T]) Latest() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.has
}

// Subscribe returns a channel that yields the current value first, then
// every later publish. The lock spans the bus subscription so no publish
// can slip between the snapshot and the registration.
func (r *Replay[T]) Subscribe() (<-chan T, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, cancel := r.bus.Subscribe()
	if !r.has {
		return ch, cancel
	}

	out := make(chan T, subscriberBuffer)
	out <- r.last
	go func() {
		defer close(out)
		for v := range ch {
			select {
			case out <- v:
			default:
			}
		}
	}()
	return out, cancel
}

// Close shuts down the underlying bus.
func (r *Replay[T]) Close() {
	r.bus.Close()
}
