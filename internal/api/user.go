package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"blanc-client/internal/models"
)

// GetMe fetches the current user's full snapshot.
func (c *Client) GetMe(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser fetches another user's profile.
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+id, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMe patches profile fields and returns the updated snapshot.
func (c *Client) UpdateMe(ctx context.Context, fields map[string]any) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPatch, "/users/me", fields, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UploadImage stores a photo into the fixed slot index and returns the
// updated snapshot.
func (c *Client) UploadImage(ctx context.Context, index int, filename string, file io.Reader) (*models.User, error) {
	if index < 0 || index >= models.MaxImageSlots {
		return nil, fmt.Errorf("image index %d out of range", index)
	}
	var user models.User
	fields := map[string]string{"index": strconv.Itoa(index)}
	if err := c.upload(ctx, "/users/me/images", fields, "file", filename, file, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteImage clears the photo slot at index.
func (c *Client) DeleteImage(ctx context.Context, index int) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodDelete, "/users/me/images/"+strconv.Itoa(index), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SubmitReview submits the profile for moderation.
func (c *Client) SubmitReview(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/users/me/review", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListFavoriteUsers fetches the users who favorited the current user.
func (c *Client) ListFavoriteUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := c.do(ctx, http.MethodGet, "/users/me/favorites", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListRaters fetches the users who gave the current user a star rating.
func (c *Client) ListRaters(ctx context.Context) ([]*models.Rater, error) {
	var raters []*models.Rater
	if err := c.do(ctx, http.MethodGet, "/users/me/raters", nil, &raters); err != nil {
		return nil, err
	}
	return raters, nil
}

// RateUser gives target a star rating.
func (c *Client) RateUser(ctx context.Context, targetID string, score int) error {
	return c.do(ctx, http.MethodPost, "/users/"+targetID+"/star", map[string]int{"score": score}, nil)
}

// Poke sends a poke to target.
func (c *Client) Poke(ctx context.Context, targetID string) error {
	return c.do(ctx, http.MethodPost, "/users/"+targetID+"/poke", nil, nil)
}

// ReportUser files a report against target.
func (c *Client) ReportUser(ctx context.Context, targetID, reason string) error {
	body := map[string]string{"user_id": targetID, "reason": reason}
	return c.do(ctx, http.MethodPost, "/reports", body, nil)
}

// PurchasePoints credits the account and returns the updated snapshot.
func (c *Client) PurchasePoints(ctx context.Context, amount int) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/points/purchase", map[string]int{"amount": amount}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
