package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestClient_SendsAuthHeaders(t *testing.T) {
	var gotAuth, gotUID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUID = r.Header.Get("uid")
		w.Write([]byte(`{"id":"u1","nickname":"n"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetCredentials("tok-123", "uid-456")

	if _, err := c.GetMe(context.Background()); err != nil {
		t.Fatalf("GetMe failed: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
	if gotUID != "uid-456" {
		t.Errorf("uid = %q, want uid-456", gotUID)
	}
}

func TestClient_DecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"user not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetUser(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Message != "user not found" {
		t.Errorf("message = %q, want user not found", apiErr.Message)
	}
}

func TestClient_VerifySMSInstallsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sms/verify" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"status":"verified","token":"tok","uid":"uid-1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	status, err := c.VerifySMS(context.Background(), "+8210", "000000")
	if err != nil {
		t.Fatalf("VerifySMS failed: %v", err)
	}
	if status != SMSVerified {
		t.Errorf("status = %q, want verified", status)
	}
	if c.Token() != "tok" {
		t.Errorf("token = %q, want tok", c.Token())
	}
}

func TestClient_TokenExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     exp.Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	c := NewClient("http://example.invalid")
	c.SetCredentials(signed, "uid")

	got, err := c.TokenExpiresAt()
	if err != nil {
		t.Fatalf("TokenExpiresAt failed: %v", err)
	}
	if !got.Equal(exp) {
		t.Errorf("expiry = %v, want %v", got, exp)
	}
}

func TestClient_TokenExpiresAtWithoutToken(t *testing.T) {
	c := NewClient("http://example.invalid")
	if _, err := c.TokenExpiresAt(); err == nil {
		t.Error("expected error without token")
	}
}

func TestClient_UploadImageRejectsBadIndex(t *testing.T) {
	c := NewClient("http://example.invalid")
	if _, err := c.UploadImage(context.Background(), 6, "a.jpg", nil); err == nil {
		t.Error("expected error for out-of-range slot")
	}
}
