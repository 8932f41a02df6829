package event

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// subscriber channel buffer. A subscriber that falls this far behind has
// its events dropped rather than blocking the publisher.
const subscriberBuffer = 64

// Bus is an in-process multicast stream. Every subscriber receives every
// value published after it subscribed; late subscribers miss earlier
// values. There is no backpressure and no durability.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   map[int]chan T
	next   int
	closed bool
}

// NewBus creates an empty bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[int]chan T)}
}

// Publish delivers v to every current subscriber. Subscribers whose buffer
// is full are skipped.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for id, ch := range b.subs {
		select {
		case ch <- v:
		default:
			log.Warn().Int("subscriber", id).Msg("event bus subscriber full, dropping event")
		}
	}
}

// Subscribe registers a new subscriber and returns its receive channel plus
// an unsubscribe func. Unsubscribing closes the channel; it is safe to call
// more than once.
func (b *Bus[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Close shuts the bus down and closes every subscriber channel.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
