package api

import (
	"context"
	"net/http"

	"blanc-client/internal/models"
)

// SMSStatus is the decoded result of the verification endpoints.
type SMSStatus string

const (
	SMSSent          SMSStatus = "sent"
	SMSInvalidNumber SMSStatus = "invalid_number"
	SMSExpired       SMSStatus = "expired"
	SMSMismatched    SMSStatus = "mismatched"
	SMSVerified      SMSStatus = "verified"
)

type smsResponse struct {
	Status SMSStatus `json:"status"`
	Token  string    `json:"token,omitempty"`
	UID    string    `json:"uid,omitempty"`
}

// RequestSMS asks the backend to send a verification code to phone.
func (c *Client) RequestSMS(ctx context.Context, phone string) (SMSStatus, error) {
	var resp smsResponse
	err := c.do(ctx, http.MethodPost, "/sms", map[string]string{"phone": phone}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Status, nil
}

// VerifySMS exchanges phone+code for credentials. On a verified result the
// returned token and uid are installed on the client.
func (c *Client) VerifySMS(ctx context.Context, phone, code string) (SMSStatus, error) {
	var resp smsResponse
	err := c.do(ctx, http.MethodPost, "/sms/verify", map[string]string{"phone": phone, "code": code}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Status == SMSVerified {
		c.SetCredentials(resp.Token, resp.UID)
	}
	return resp.Status, nil
}

// CreateSession performs the identity exchange: the backend resolves the
// installed credentials to a full profile snapshot, creating one for first
// time users.
func (c *Client) CreateSession(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/session", map[string]string{}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
