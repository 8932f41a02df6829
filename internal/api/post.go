package api

import (
	"context"
	"net/http"

	"blanc-client/internal/models"
)

// ListPosts fetches the feed, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := c.do(ctx, http.MethodGet, "/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost fetches one post with its full comment tree.
func (c *Client) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodGet, "/posts/"+id, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost publishes a new post.
func (c *Client) CreatePost(ctx context.Context, description string, resources []models.Resource) (*models.Post, error) {
	body := map[string]any{
		"description": description,
		"resources":   resources,
	}
	var post models.Post
	if err := c.do(ctx, http.MethodPost, "/posts", body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// FavoritePost adds the current user to a post's favorite list.
func (c *Client) FavoritePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/posts/"+id+"/favorite", nil, nil)
}

// UnfavoritePost removes the current user from a post's favorite list.
func (c *Client) UnfavoritePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+id+"/favorite", nil, nil)
}

// CreateComment adds a comment to a post. parentID nests under an existing
// comment when non-empty.
func (c *Client) CreateComment(ctx context.Context, postID, parentID, text string) (*models.Comment, error) {
	body := map[string]string{
		"parent_id": parentID,
		"comment":   text,
	}
	var comment models.Comment
	if err := c.do(ctx, http.MethodPost, "/posts/"+postID+"/comments", body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ThumbUpComment toggles the current user's membership of a comment's
// thumb-up list.
func (c *Client) ThumbUpComment(ctx context.Context, commentID string) error {
	return c.do(ctx, http.MethodPost, "/comments/"+commentID+"/thumb-up", nil, nil)
}

// ThumbDownComment toggles the current user's membership of a comment's
// thumb-down list.
func (c *Client) ThumbDownComment(ctx context.Context, commentID string) error {
	return c.do(ctx, http.MethodPost, "/comments/"+commentID+"/thumb-down", nil, nil)
}
