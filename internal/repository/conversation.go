package repository

import (
	"fmt"
	"time"

	"blanc-client/internal/models"

	"github.com/google/uuid"
)

func (s *Store) conversationFor(id, viewerID string) (*models.Conversation, error) {
	conv, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s not found", id)
	}
	for _, p := range conv.Participants {
		if p.ID == viewerID {
			return conv, nil
		}
	}
	return nil, fmt.Errorf("conversation %s not found", id)
}

// GetConversation returns one conversation visible to the viewer.
func (s *Store) GetConversation(id, viewerID string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, err := s.conversationFor(id, viewerID)
	if err != nil {
		return nil, err
	}
	return clone(conv), nil
}

// Conversations lists the viewer's conversations.
func (s *Store) Conversations(viewerID string) []*models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Conversation
	for _, conv := range s.conversations {
		for _, p := range conv.Participants {
			if p.ID == viewerID {
				out = append(out, clone(conv))
				break
			}
		}
	}
	return out
}

// AppendMessage appends to the thread and returns the stored message plus
// the partner's user id for push delivery.
func (s *Store) AppendMessage(convID, senderID string, category models.MessageCategory, payload string) (*models.Message, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.conversationFor(convID, senderID)
	if err != nil {
		return nil, "", err
	}
	if !conv.Available {
		return nil, "", fmt.Errorf("conversation %s is not available", convID)
	}

	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: convID,
		UserID:         senderID,
		Category:       category,
		Payload:        payload,
		CreatedAt:      time.Now().Unix(),
	}
	conv.Messages = append(conv.Messages, msg)

	partnerID := ""
	if p := conv.PartnerOf(senderID); p != nil {
		partnerID = p.ID
	}
	return clone(msg), partnerID, nil
}

// OpenConversation records the viewer's side of the open handshake. The
// conversation becomes available once both participants opened it; the
// second return value reports whether this call completed the handshake.
func (s *Store) OpenConversation(id, viewerID string) (*models.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.conversationFor(id, viewerID)
	if err != nil {
		return nil, false, err
	}

	opened := s.opened[id]
	if opened == nil {
		opened = make(map[string]bool)
		s.opened[id] = opened
	}
	opened[viewerID] = true

	completed := false
	if !conv.Available {
		all := true
		for _, p := range conv.Participants {
			if !opened[p.ID] {
				all = false
				break
			}
		}
		if all {
			conv.Available = true
			completed = true
		}
	}
	return clone(conv), completed, nil
}

// ParticipantIDs returns the user ids in a conversation.
func (s *Store) ParticipantIDs(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil
	}
	var out []string
	for _, p := range conv.Participants {
		out = append(out, p.ID)
	}
	return out
}

// LeaveConversation removes the viewer's conversation entirely.
func (s *Store) LeaveConversation(id, viewerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.conversationFor(id, viewerID); err != nil {
		return err
	}
	delete(s.conversations, id)
	delete(s.opened, id)
	return nil
}
