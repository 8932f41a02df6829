package event

// Channel passes ephemeral selection context between otherwise unrelated
// parts of the app (for example "conversation X was picked") without a
// navigation payload mechanism. Semantics are identical to Bus: plain
// multicast, no replay, consumed once per subscriber.
type Channel[T any] struct {
	*Bus[T]
}

// NewChannel creates an empty selection channel.
func NewChannel[T any]() *Channel[T] {
	return &Channel[T]{Bus: NewBus[T]()}
}
