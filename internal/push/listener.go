package push

import (
	"context"
	"time"

	"blanc-client/internal/event"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Bus carries decoded push events to in-process subscribers.
type Bus = event.Bus[Event]

// NewBus creates the process-wide push event bus.
func NewBus() *Bus {
	return event.NewBus[Event]()
}

const (
	reconnectBase = time.Second
	reconnectMax  = 30 * time.Second
)

// Listener maintains a WebSocket connection to the push gateway, decodes
// incoming frames and republishes them on the bus.
type Listener struct {
	url   string
	token string
	bus   *Bus
}

// NewListener creates a listener that publishes onto bus. url is the ws
// endpoint; token is appended as a query parameter the way the gateway
// authenticates connections.
func NewListener(url, token string, bus *Bus) *Listener {
	return &Listener{url: url, token: token, bus: bus}
}

// Run connects and reads until ctx is cancelled, reconnecting with
// exponential backoff on any connection failure.
func (l *Listener) Run(ctx context.Context) {
	backoff := reconnectBase
	for {
		if err := l.readLoop(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("push connection lost")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
}

func (l *Listener) readLoop(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url+"?token="+l.token, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Close the connection when ctx ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	log.Info().Str("url", l.url).Msg("push connection established")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Msg("push connection closed unexpectedly")
			}
			return err
		}

		e, err := Decode(data)
		if err != nil {
			log.Error().Err(err).Msg("failed to parse push frame")
			continue
		}

		log.Debug().Str("type", string(e.Type)).Msg("push event received")
		l.bus.Publish(e)
	}
}
