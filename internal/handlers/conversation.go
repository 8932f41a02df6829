package handlers

import (
	"net/http"

	"blanc-client/internal/middleware"
	"blanc-client/internal/models"
	"blanc-client/internal/push"
	"blanc-client/internal/repository"

	"github.com/go-chi/chi/v5"
)

// ConversationHandler handles conversation HTTP requests.
type ConversationHandler struct {
	store *repository.Store
	hub   *Hub
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(store *repository.Store, hub *Hub) *ConversationHandler {
	return &ConversationHandler{store: store, hub: hub}
}

// List handles GET /api/v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	convs := h.store.Conversations(middleware.GetUserID(r.Context()))
	respondJSON(w, convs, http.StatusOK)
}

// Get handles GET /api/v1/conversations/{conversation_id}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	conv, err := h.store.GetConversation(chi.URLParam(r, "conversation_id"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, conv, http.StatusOK)
}

// SendMessage handles POST /api/v1/conversations/{conversation_id}/messages
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	senderID := middleware.GetUserID(r.Context())
	convID := chi.URLParam(r, "conversation_id")
	var body struct {
		Category string `json:"category"`
		Payload  string `json:"payload"`
	}
	if err := decodeBody(r, &body); err != nil || body.Payload == "" {
		respondError(w, "invalid body", http.StatusBadRequest)
		return
	}
	category := models.MessageCategory(body.Category)
	if category == "" {
		category = models.MessageText
	}

	msg, partnerID, err := h.store.AppendMessage(convID, senderID, category, body.Payload)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if partnerID != "" {
		h.hub.TryPush(partnerID, push.Event{
			Type:           push.EventMessage,
			UserID:         senderID,
			ConversationID: convID,
			MessageID:      msg.ID,
			Category:       string(msg.Category),
			Payload:        msg.Payload,
			CreatedAt:      msg.CreatedAt,
		})
	}
	respondJSON(w, msg, http.StatusCreated)
}

// Open handles POST /api/v1/conversations/{conversation_id}/open
func (h *ConversationHandler) Open(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	convID := chi.URLParam(r, "conversation_id")

	conv, completed, err := h.store.OpenConversation(convID, viewerID)
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}

	// The handshake completing is broadcast to both sides so the party
	// that opened first learns about it by push.
	if completed {
		for _, id := range h.store.ParticipantIDs(convID) {
			h.hub.TryPush(id, push.Event{
				Type:           push.EventConversationOpen,
				ConversationID: convID,
			})
		}
	}
	respondJSON(w, conv, http.StatusOK)
}

// Leave handles DELETE /api/v1/conversations/{conversation_id}
func (h *ConversationHandler) Leave(w http.ResponseWriter, r *http.Request) {
	err := h.store.LeaveConversation(chi.URLParam(r, "conversation_id"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
