package api

import "fmt"

// APIError is a non-2xx response from the backend. Status carries the
// optional decoded status string a few endpoints return (for example the
// SMS verification result); it is empty elsewhere.
type APIError struct {
	StatusCode int    `json:"-"`
	Status     string `json:"status,omitempty"`
	Message    string `json:"error,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %d", e.StatusCode)
}
