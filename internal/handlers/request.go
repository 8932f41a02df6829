package handlers

import (
	"net/http"
	"time"

	"blanc-client/internal/middleware"
	"blanc-client/internal/push"
	"blanc-client/internal/repository"

	"github.com/go-chi/chi/v5"
)

// RequestHandler handles friend-request HTTP requests.
type RequestHandler struct {
	store *repository.Store
	hub   *Hub
}

// NewRequestHandler creates a new request handler.
func NewRequestHandler(store *repository.Store, hub *Hub) *RequestHandler {
	return &RequestHandler{store: store, hub: hub}
}

// List handles GET /api/v1/requests
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	reqs := h.store.PendingRequests(middleware.GetUserID(r.Context()))
	respondJSON(w, reqs, http.StatusOK)
}

// Get handles GET /api/v1/requests/{request_id}
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.store.GetRequest(chi.URLParam(r, "request_id"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, req, http.StatusOK)
}

// Create handles POST /api/v1/requests
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	senderID := middleware.GetUserID(r.Context())
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := decodeBody(r, &body); err != nil || body.UserID == "" {
		respondError(w, "invalid body", http.StatusBadRequest)
		return
	}

	req, err := h.store.CreateRequest(senderID, body.UserID)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.hub.TryPush(body.UserID, push.Event{
		Type:      push.EventRequest,
		UserID:    senderID,
		RequestID: req.ID,
		CreatedAt: time.Now().Unix(),
	})
	respondJSON(w, req, http.StatusCreated)
}

// Accept handles POST /api/v1/requests/{request_id}/accept
func (h *RequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	senderID, conv, err := h.store.AcceptRequest(chi.URLParam(r, "request_id"), viewerID)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now().Unix()
	h.hub.TryPush(senderID, push.Event{
		Type:           push.EventMatched,
		UserID:         viewerID,
		ConversationID: conv.ID,
		CreatedAt:      now,
	})
	h.hub.TryPush(viewerID, push.Event{
		Type:           push.EventMatched,
		UserID:         senderID,
		ConversationID: conv.ID,
		CreatedAt:      now,
	})
	respondJSON(w, conv, http.StatusOK)
}

// Decline handles POST /api/v1/requests/{request_id}/decline
func (h *RequestHandler) Decline(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeclineRequest(chi.URLParam(r, "request_id"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
