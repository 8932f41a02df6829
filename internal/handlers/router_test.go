package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blanc-client/internal/middleware"
	"blanc-client/internal/models"
	"blanc-client/internal/repository"
)

const testCode = "000000"

func newTestServer(t *testing.T) (*httptest.Server, *repository.Store) {
	t.Helper()
	store := repository.NewStore()
	srv := httptest.NewServer(NewRouter(store, middleware.NewAuth("test-secret"), NewHub(), testCode))
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		buf = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

// verify walks the sms flow and returns the issued token and user id.
func verify(t *testing.T, srv *httptest.Server, phone string) (token, userID string) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sms/verify", "", map[string]string{
		"phone": phone,
		"code":  testCode,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status = %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["status"] != "verified" {
		t.Fatalf("verify status = %q, want verified", body["status"])
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/session", body["token"], map[string]string{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("session status = %d", resp.StatusCode)
	}
	user := decode[models.User](t, resp)
	return body["token"], user.ID
}

func TestVerifySMS_WrongCodeMismatched(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sms/verify", "", map[string]string{
		"phone": "010-1234-5678",
		"code":  "999999",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["status"] != "mismatched" {
		t.Errorf("status = %q, want mismatched", body["status"])
	}
	if body["token"] != "" {
		t.Error("mismatched verification must not issue a token")
	}
}

func TestVerifySMS_SamePhoneSameUser(t *testing.T) {
	srv, _ := newTestServer(t)

	_, first := verify(t, srv, "010-1234-5678")
	_, second := verify(t, srv, "010-1234-5678")
	if first != second {
		t.Errorf("re-verification created a new user: %s vs %s", first, second)
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/users/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/users/me", "not-a-jwt", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", resp.StatusCode)
	}
}

func TestGetUser_StripsPrivateFields(t *testing.T) {
	srv, store := newTestServer(t)

	tokenA, idA := verify(t, srv, "010-1111-1111")
	_, idB := verify(t, srv, "010-2222-2222")
	if _, err := store.CreateRequest(idA, idB); err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/users/"+idB, tokenA, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	user := decode[models.User](t, resp)
	if user.UID != "" {
		t.Error("another user's uid must not be exposed")
	}
	if len(user.ReceivedRequestUserIDs) != 0 || len(user.MatchedUserIDs) != 0 {
		t.Error("another user's relation lists must not be exposed")
	}
}

func TestUpdateMe_PatchesFields(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := verify(t, srv, "010-1111-1111")

	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/v1/users/me", token, map[string]any{
		"nickname": "mina",
		"area":     "Seoul",
		"body_id":  2,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	user := decode[models.User](t, resp)
	if user.Nickname != "mina" || user.Area != "Seoul" {
		t.Errorf("patched user = %+v", user)
	}
	if user.BodyID != 2 {
		t.Errorf("body_id = %d, want 2", user.BodyID)
	}
}

func uploadImage(t *testing.T, srv *httptest.Server, token string, index string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("index", index); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	fw, err := mw.CreateFormFile("file", "photo.jpg")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	fw.Write([]byte("jpeg bytes"))
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/users/me/images", &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSubmitReview_NeedsTwoImages(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := verify(t, srv, "010-1111-1111")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/users/me/review", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("review without photos status = %d, want 400", resp.StatusCode)
	}

	for _, index := range []string{"0", "1"} {
		if resp := uploadImage(t, srv, token, index); resp.StatusCode != http.StatusOK {
			t.Fatalf("upload status = %d", resp.StatusCode)
		}
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/users/me/review", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("review status = %d", resp.StatusCode)
	}
	user := decode[models.User](t, resp)
	if user.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", user.Status)
	}
	if len(user.Images) != 2 {
		t.Errorf("image count = %d, want 2", len(user.Images))
	}
	if !strings.HasPrefix(user.Images[0].URL, "https://") {
		t.Errorf("image url = %q", user.Images[0].URL)
	}
}

func TestRateUser_UnknownTarget(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := verify(t, srv, "010-1111-1111")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/users/nope/star", token, map[string]int{"score": 5})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestPurchasePoints_AddsBalance(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := verify(t, srv, "010-1111-1111")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/points/purchase", token, map[string]int{"amount": 30})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	user := decode[models.User](t, resp)
	if user.Points != 30 {
		t.Errorf("points = %d, want 30", user.Points)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/points/purchase", token, map[string]int{"amount": -5})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative amount status = %d, want 400", resp.StatusCode)
	}
}

func TestConversationFlow_OpenThenMessage(t *testing.T) {
	srv, store := newTestServer(t)

	tokenA, idA := verify(t, srv, "010-1111-1111")
	tokenB, idB := verify(t, srv, "010-2222-2222")

	req, err := store.CreateRequest(idA, idB)
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/requests/"+req.ID+"/accept", tokenB, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("accept status = %d", resp.StatusCode)
	}
	conv := decode[models.Conversation](t, resp)

	// Closed until both sides open.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/conversations/"+conv.ID+"/messages", tokenA,
		map[string]string{"category": "text", "payload": "early"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("send before open status = %d, want 400", resp.StatusCode)
	}

	for _, token := range []string{tokenA, tokenB} {
		resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/conversations/"+conv.ID+"/open", token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("open status = %d", resp.StatusCode)
		}
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/conversations/"+conv.ID+"/messages", tokenA,
		map[string]string{"category": "text", "payload": "hello"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send status = %d", resp.StatusCode)
	}
	msg := decode[models.Message](t, resp)
	if msg.Payload != "hello" || msg.UserID != idA {
		t.Errorf("message = %+v", msg)
	}

	// A non-participant cannot read it.
	tokenC, _ := verify(t, srv, "010-3333-3333")
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/conversations/"+conv.ID, tokenC, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("outsider read status = %d, want 404", resp.StatusCode)
	}
}

func TestLeaveConversation_RemovesFromList(t *testing.T) {
	srv, store := newTestServer(t)

	tokenA, idA := verify(t, srv, "010-1111-1111")
	_, idB := verify(t, srv, "010-2222-2222")

	req, err := store.CreateRequest(idB, idA)
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	if _, _, err := store.AcceptRequest(req.ID, idA); err != nil {
		t.Fatalf("AcceptRequest failed: %v", err)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/conversations", tokenA, nil)
	convs := decode[[]models.Conversation](t, resp)
	if len(convs) != 1 {
		t.Fatalf("conversation count = %d, want 1", len(convs))
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/conversations/"+convs[0].ID, tokenA, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("leave status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/conversations", tokenA, nil)
	convs = decode[[]models.Conversation](t, resp)
	if len(convs) != 0 {
		t.Errorf("conversation count after leave = %d, want 0", len(convs))
	}
}
