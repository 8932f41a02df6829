package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"blanc-client/internal/middleware"
	"blanc-client/internal/models"
	"blanc-client/internal/push"
	"blanc-client/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// UserHandler handles auth and user-related HTTP requests.
type UserHandler struct {
	store   *repository.Store
	auth    *middleware.Auth
	hub     *Hub
	smsCode string
}

// NewUserHandler creates a new user handler. smsCode is the fixed dev
// verification code.
func NewUserHandler(store *repository.Store, auth *middleware.Auth, hub *Hub, smsCode string) *UserHandler {
	return &UserHandler{store: store, auth: auth, hub: hub, smsCode: smsCode}
}

// RequestSMS handles POST /api/v1/sms
func (h *UserHandler) RequestSMS(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
	}
	if err := decodeBody(r, &body); err != nil || body.Phone == "" {
		respondJSON(w, ErrorResponse{Status: "invalid_number"}, http.StatusBadRequest)
		return
	}
	log.Info().Str("phone", body.Phone).Str("code", h.smsCode).Msg("dev verification code issued")
	respondJSON(w, map[string]string{"status": "sent"}, http.StatusOK)
}

// VerifySMS handles POST /api/v1/sms/verify
func (h *UserHandler) VerifySMS(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if err := decodeBody(r, &body); err != nil || body.Phone == "" {
		respondJSON(w, ErrorResponse{Status: "invalid_number"}, http.StatusBadRequest)
		return
	}
	if body.Code != h.smsCode {
		respondJSON(w, map[string]string{"status": "mismatched"}, http.StatusOK)
		return
	}

	user := h.store.GetOrCreateUser(body.Phone)
	token, err := h.auth.GenerateToken(user.ID)
	if err != nil {
		respondError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	// A second verification means a new device took over the account.
	if h.hub.IsOnline(user.ID) {
		h.hub.TryPush(user.ID, push.Event{
			Type:    push.EventLogout,
			Payload: "signed in from another device",
		})
	}

	respondJSON(w, map[string]string{
		"status": "verified",
		"token":  token,
		"uid":    user.UID,
	}, http.StatusOK)
}

// CreateSession handles POST /api/v1/session
func (h *UserHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	user, err := h.store.TouchLogin(userID)
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, user, http.StatusOK)
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUser(middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, user, http.StatusOK)
}

// GetUser handles GET /api/v1/users/{user_id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUser(chi.URLParam(r, "user_id"))
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	// Another user's snapshot never exposes the relation id lists.
	user.UID = ""
	user.MatchedUserIDs = nil
	user.UnmatchedUserIDs = nil
	user.SentRequestUserIDs = nil
	user.ReceivedRequestUserIDs = nil
	user.StarRatings = nil
	respondJSON(w, user, http.StatusOK)
}

// UpdateMe handles PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		respondError(w, "invalid body", http.StatusBadRequest)
		return
	}
	user, err := h.store.UpdateUser(middleware.GetUserID(r.Context()), fields)
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, user, http.StatusOK)
}

// UploadImage handles POST /api/v1/users/me/images
func (h *UserHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		respondError(w, "invalid image index", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "file field required", http.StatusBadRequest)
		return
	}
	file.Close()

	// The dev server does not persist bytes; it fabricates a URL.
	url := fmt.Sprintf("https://cdn.blanc.dev/%s-%s", uuid.New().String(), header.Filename)
	user, err := h.store.SetImage(middleware.GetUserID(r.Context()), index, url)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, user, http.StatusOK)
}

// DeleteImage handles DELETE /api/v1/users/me/images/{index}
func (h *UserHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, "invalid image index", http.StatusBadRequest)
		return
	}
	user, err := h.store.RemoveImage(middleware.GetUserID(r.Context()), index)
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, user, http.StatusOK)
}

// SubmitReview handles POST /api/v1/users/me/review
func (h *UserHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.SubmitReview(middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, user, http.StatusOK)
}

// ListFavorites handles GET /api/v1/users/me/favorites
func (h *UserHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	users := h.store.FavoriteUsers(middleware.GetUserID(r.Context()))
	if users == nil {
		users = []*models.User{}
	}
	respondJSON(w, users, http.StatusOK)
}

// ListRaters handles GET /api/v1/users/me/raters
func (h *UserHandler) ListRaters(w http.ResponseWriter, r *http.Request) {
	raters := h.store.Raters(middleware.GetUserID(r.Context()))
	respondJSON(w, raters, http.StatusOK)
}

// RateUser handles POST /api/v1/users/{user_id}/star
func (h *UserHandler) RateUser(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	targetID := chi.URLParam(r, "user_id")
	var body struct {
		Score int `json:"score"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := h.store.RateUser(actorID, targetID, body.Score); err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	h.hub.TryPush(targetID, push.Event{
		Type:      push.EventStarRating,
		UserID:    actorID,
		Score:     body.Score,
		CreatedAt: time.Now().Unix(),
	})
	w.WriteHeader(http.StatusNoContent)
}

// Poke handles POST /api/v1/users/{user_id}/poke
func (h *UserHandler) Poke(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	targetID := chi.URLParam(r, "user_id")
	if _, err := h.store.GetUser(targetID); err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	h.hub.TryPush(targetID, push.Event{
		Type:      push.EventPoke,
		UserID:    actorID,
		CreatedAt: time.Now().Unix(),
	})
	w.WriteHeader(http.StatusNoContent)
}

// Report handles POST /api/v1/reports
func (h *UserHandler) Report(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"user_id"`
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &body); err != nil || body.UserID == "" {
		respondError(w, "invalid body", http.StatusBadRequest)
		return
	}
	log.Info().
		Str("reporter", middleware.GetUserID(r.Context())).
		Str("user_id", body.UserID).
		Str("reason", body.Reason).
		Msg("user reported")
	w.WriteHeader(http.StatusNoContent)
}

// PurchasePoints handles POST /api/v1/points/purchase
func (h *UserHandler) PurchasePoints(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount int `json:"amount"`
	}
	if err := decodeBody(r, &body); err != nil || body.Amount <= 0 {
		respondError(w, "invalid amount", http.StatusBadRequest)
		return
	}
	user, err := h.store.AddPoints(middleware.GetUserID(r.Context()), body.Amount)
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, user, http.StatusOK)
}
