package api

import (
	"context"
	"net/http"

	"blanc-client/internal/models"
)

// ListConversations fetches all of the current user's conversations.
func (c *Client) ListConversations(ctx context.Context) ([]*models.Conversation, error) {
	var convs []*models.Conversation
	if err := c.do(ctx, http.MethodGet, "/conversations", nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// GetConversation fetches one conversation with its full message list.
func (c *Client) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := c.do(ctx, http.MethodGet, "/conversations/"+id, nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// SendMessage posts a message and returns the server's echoed copy.
func (c *Client) SendMessage(ctx context.Context, conversationID string, category models.MessageCategory, payload string) (*models.Message, error) {
	body := map[string]string{
		"category": string(category),
		"payload":  payload,
	}
	var msg models.Message
	if err := c.do(ctx, http.MethodPost, "/conversations/"+conversationID+"/messages", body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// OpenConversation activates a conversation so messages may be exchanged.
func (c *Client) OpenConversation(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := c.do(ctx, http.MethodPost, "/conversations/"+id+"/open", nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// LeaveConversation removes the current user from a conversation.
func (c *Client) LeaveConversation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/conversations/"+id, nil, nil)
}
