package handlers

import (
	"fmt"
	"sync"

	"blanc-client/internal/push"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Hub tracks one push connection per user and delivers encoded push events.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{connections: make(map[string]*websocket.Conn)}
}

// Register registers a user's connection, closing any previous one.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[userID]; ok {
		existing.Close()
	}
	h.connections[userID] = conn
	log.Info().Str("user_id", userID).Msg("push connection registered")
}

// Unregister drops a user's connection if it is still the given one.
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.connections[userID]; ok && current == conn {
		current.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("push connection unregistered")
	}
}

// IsOnline reports whether a user has a live push connection.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[userID]
	return ok
}

// Push delivers an event to one user. Offline users simply miss it; the
// push channel has no durability.
func (h *Hub) Push(userID string, e push.Event) error {
	h.mu.RLock()
	conn, ok := h.connections[userID]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := push.Encode(e)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID, conn)
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}

// TryPush is Push with the error reduced to a debug log. Most push sites do
// not care whether the receiver is online.
func (h *Hub) TryPush(userID string, e push.Event) {
	if err := h.Push(userID, e); err != nil {
		log.Debug().Err(err).Str("user_id", userID).Str("type", string(e.Type)).Msg("push skipped")
	}
}
