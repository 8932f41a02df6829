package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"blanc-client/internal/api"
	"blanc-client/internal/event"
	"blanc-client/internal/models"
	"blanc-client/internal/push"
	"blanc-client/internal/readmark"
	"blanc-client/internal/session"

	"github.com/rs/zerolog/log"
)

// ErrConversationClosed rejects sends before the open handshake completes.
var ErrConversationClosed = errors.New("conversation is not available yet")

// ConversationModel keeps one conversation's message list current for the
// screen displaying it. It fetches on Load, annotates each message with an
// is-mine flag and the partner's relationship, and applies push events for
// its conversation id for as long as it lives: "message" appends a locally
// constructed entry, "conversation_open" flips the availability flag. Every
// applied event also writes the last message's read marker.
type ConversationModel struct {
	id    string
	api   *api.Client
	sess  *session.Session
	marks *readmark.Store

	state *event.Replay[*models.Conversation]
	errs  *event.Bus[error]

	mu   sync.Mutex
	conv *models.Conversation

	cancelPush func()
}

// NewConversationModel builds the model for the conversation id picked on
// the selection channel and starts its push subscription.
func NewConversationModel(id string, client *api.Client, sess *session.Session, marks *readmark.Store, bus *push.Bus) *ConversationModel {
	m := &ConversationModel{
		id:    id,
		api:   client,
		sess:  sess,
		marks: marks,
		state: event.NewReplay[*models.Conversation](),
		errs:  event.NewBus[error](),
	}
	events, cancel := bus.Subscribe()
	m.cancelPush = cancel
	go func() {
		for e := range events {
			m.handlePush(e)
		}
	}()
	return m
}

// Load fetches the full conversation, annotates it and publishes.
func (m *ConversationModel) Load(ctx context.Context) error {
	conv, err := m.api.GetConversation(ctx, m.id)
	if err != nil {
		err = fmt.Errorf("failed to load conversation: %w", err)
		m.report(err)
		return err
	}
	m.annotate(conv)

	m.mu.Lock()
	m.conv = conv
	m.mu.Unlock()

	m.markRead(conv)
	m.state.Publish(conv)
	return nil
}

// SendMessage posts to the backend and appends the echoed message, marked
// as mine, only after server confirmation. No optimistic copy is shown.
func (m *ConversationModel) SendMessage(ctx context.Context, category models.MessageCategory, payload string) error {
	m.mu.Lock()
	available := m.conv != nil && m.conv.Available
	m.mu.Unlock()
	if !available {
		return ErrConversationClosed
	}

	msg, err := m.api.SendMessage(ctx, m.id, category, payload)
	if err != nil {
		err = fmt.Errorf("failed to send message: %w", err)
		m.report(err)
		return err
	}
	msg.IsMine = true

	m.mu.Lock()
	conv := m.conv
	if conv != nil {
		conv.Messages = append(conv.Messages, msg)
	}
	m.mu.Unlock()
	if conv != nil {
		m.markRead(conv)
		m.state.Publish(conv)
	}
	return nil
}

// Open activates the conversation via the backend. The availability flag is
// monotonic: once true it never reverts.
func (m *ConversationModel) Open(ctx context.Context) error {
	conv, err := m.api.OpenConversation(ctx, m.id)
	if err != nil {
		err = fmt.Errorf("failed to open conversation: %w", err)
		m.report(err)
		return err
	}

	m.mu.Lock()
	cur := m.conv
	if cur != nil && conv.Available {
		cur.Available = true
	}
	m.mu.Unlock()
	if cur != nil {
		m.state.Publish(cur)
	}
	return nil
}

// Observe returns the replay-latest conversation stream.
func (m *ConversationModel) Observe() (<-chan *models.Conversation, func()) {
	return m.state.Subscribe()
}

// Errors returns the stream of surfaced failures (the toast feed).
func (m *ConversationModel) Errors() (<-chan error, func()) {
	return m.errs.Subscribe()
}

// Close tears down the subscription set.
func (m *ConversationModel) Close() {
	m.cancelPush()
	m.state.Close()
	m.errs.Close()
}

func (m *ConversationModel) handlePush(e push.Event) {
	switch e.Type {
	case push.EventMessage:
		if e.ConversationID != m.id || e.MessageID == "" {
			return
		}
		category := models.MessageCategory(e.Category)
		if category == "" {
			category = models.MessageText
		}
		// Built from the push payload directly, not re-fetched.
		msg := &models.Message{
			ID:             e.MessageID,
			ConversationID: e.ConversationID,
			UserID:         e.UserID,
			Category:       category,
			Payload:        e.Payload,
			CreatedAt:      e.CreatedAt,
		}

		m.mu.Lock()
		conv := m.conv
		if conv != nil {
			conv.Messages = append(conv.Messages, msg)
		}
		m.mu.Unlock()
		if conv != nil {
			m.markRead(conv)
			m.state.Publish(conv)
		}

	case push.EventConversationOpen:
		if e.ConversationID != m.id {
			return
		}
		m.mu.Lock()
		conv := m.conv
		if conv != nil {
			conv.Available = true
		}
		m.mu.Unlock()
		if conv != nil {
			m.markRead(conv)
			m.state.Publish(conv)
		}
	}
}

// annotate computes the transient fields relative to the current session.
func (m *ConversationModel) annotate(conv *models.Conversation) {
	me := m.sess.Current()
	if me == nil {
		return
	}
	for _, msg := range conv.Messages {
		msg.IsMine = msg.UserID == me.ID
	}
	conv.Partner = conv.PartnerOf(me.ID)
	if conv.Partner != nil {
		conv.PartnerRelation = m.sess.Relationship(conv.Partner)
	}
}

func (m *ConversationModel) markRead(conv *models.Conversation) {
	last := conv.LastMessage()
	if last == nil {
		return
	}
	if err := m.marks.MarkRead(conv.ID, last.ID); err != nil {
		log.Error().Err(err).Str("conversation_id", conv.ID).Msg("failed to write read marker")
	}
}

func (m *ConversationModel) report(err error) {
	log.Error().Err(err).Str("conversation_id", m.id).Msg("conversation error")
	m.errs.Publish(err)
}
