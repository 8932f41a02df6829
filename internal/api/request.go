package api

import (
	"context"
	"net/http"

	"blanc-client/internal/models"
)

// ListRequests fetches the pending friend requests received by the current
// user, newest first.
func (c *Client) ListRequests(ctx context.Context) ([]*models.FriendRequest, error) {
	var reqs []*models.FriendRequest
	if err := c.do(ctx, http.MethodGet, "/requests", nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// GetRequest fetches a single friend request by id.
func (c *Client) GetRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := c.do(ctx, http.MethodGet, "/requests/"+id, nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// SendRequest sends a friend request toward target.
func (c *Client) SendRequest(ctx context.Context, targetID string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := c.do(ctx, http.MethodPost, "/requests", map[string]string{"user_id": targetID}, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// AcceptRequest accepts a received request; on the backend this creates the
// match and its conversation.
func (c *Client) AcceptRequest(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/requests/"+id+"/accept", nil, nil)
}

// DeclineRequest declines a received request.
func (c *Client) DeclineRequest(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/requests/"+id+"/decline", nil, nil)
}
