package push

import (
	"encoding/json"
	"fmt"
)

// EventType tags the kinds of server-sent notifications.
type EventType string

const (
	EventPoke             EventType = "poke"
	EventRequest          EventType = "request"
	EventComment          EventType = "comment"
	EventFavorite         EventType = "favorite"
	EventMatched          EventType = "matched"
	EventThumbUp          EventType = "thumb_up"
	EventConversationOpen EventType = "conversation_open"
	EventMessage          EventType = "message"
	EventStarRating       EventType = "star_rating"
	EventLogout           EventType = "logout"
)

// Event is the decoded push payload. Each kind populates only the subset of
// ids relevant to it. Events are ephemeral: consumed once by each
// subscriber, never stored.
type Event struct {
	Type           EventType `json:"push_type"`
	UserID         string    `json:"user_id,omitempty"`
	Nickname       string    `json:"nickname,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	MessageID      string    `json:"message_id,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
	PostID         string    `json:"post_id,omitempty"`
	CommentID      string    `json:"comment_id,omitempty"`
	Category       string    `json:"category,omitempty"`
	Payload        string    `json:"payload,omitempty"`
	Score          int       `json:"score,omitempty"`
	CreatedAt      int64     `json:"created_at,omitempty"`
}

var knownTypes = map[EventType]struct{}{
	EventPoke:             {},
	EventRequest:          {},
	EventComment:          {},
	EventFavorite:         {},
	EventMatched:          {},
	EventThumbUp:          {},
	EventConversationOpen: {},
	EventMessage:          {},
	EventStarRating:       {},
	EventLogout:           {},
}

// Decode parses a raw push payload into an Event. Payloads with an unknown
// or missing push_type are rejected so stray frames never reach subscribers.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("failed to decode push payload: %w", err)
	}
	if _, ok := knownTypes[e.Type]; !ok {
		return Event{}, fmt.Errorf("unknown push type %q", e.Type)
	}
	return e, nil
}

// Encode serializes an Event for the wire.
func Encode(e Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode push payload: %w", err)
	}
	return data, nil
}
