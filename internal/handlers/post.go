package handlers

import (
	"net/http"
	"time"

	"blanc-client/internal/middleware"
	"blanc-client/internal/models"
	"blanc-client/internal/push"
	"blanc-client/internal/repository"

	"github.com/go-chi/chi/v5"
)

// PostHandler handles feed HTTP requests.
type PostHandler struct {
	store *repository.Store
	hub   *Hub
}

// NewPostHandler creates a new post handler.
func NewPostHandler(store *repository.Store, hub *Hub) *PostHandler {
	return &PostHandler{store: store, hub: hub}
}

// List handles GET /api/v1/posts
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts := h.store.Posts()
	if posts == nil {
		posts = []*models.Post{}
	}
	respondJSON(w, posts, http.StatusOK)
}

// Get handles GET /api/v1/posts/{post_id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.store.GetPost(chi.URLParam(r, "post_id"))
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, post, http.StatusOK)
}

// Create handles POST /api/v1/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Description string            `json:"description"`
		Resources   []models.Resource `json:"resources"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, "invalid body", http.StatusBadRequest)
		return
	}

	post, err := h.store.CreatePost(middleware.GetUserID(r.Context()), body.Description, body.Resources)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, post, http.StatusCreated)
}

// Favorite handles POST /api/v1/posts/{post_id}/favorite
func (h *PostHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	postID := chi.URLParam(r, "post_id")

	authorID, err := h.store.SetFavorite(postID, actorID, true)
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	if authorID != actorID {
		h.hub.TryPush(authorID, push.Event{
			Type:      push.EventFavorite,
			UserID:    actorID,
			PostID:    postID,
			CreatedAt: time.Now().Unix(),
		})
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unfavorite handles DELETE /api/v1/posts/{post_id}/favorite
func (h *PostHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	_, err := h.store.SetFavorite(chi.URLParam(r, "post_id"), actorID, false)
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddComment handles POST /api/v1/posts/{post_id}/comments
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	postID := chi.URLParam(r, "post_id")
	var body struct {
		ParentID string `json:"parent_id"`
		Comment  string `json:"comment"`
	}
	if err := decodeBody(r, &body); err != nil || body.Comment == "" {
		respondError(w, "invalid body", http.StatusBadRequest)
		return
	}

	comment, authorID, err := h.store.AddComment(postID, body.ParentID, actorID, body.Comment)
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	if authorID != actorID {
		h.hub.TryPush(authorID, push.Event{
			Type:      push.EventComment,
			UserID:    actorID,
			PostID:    postID,
			CommentID: comment.ID,
			Payload:   comment.Comment,
			CreatedAt: comment.CreatedAt,
		})
	}
	respondJSON(w, comment, http.StatusCreated)
}

// ThumbUp handles POST /api/v1/comments/{comment_id}/thumb-up
func (h *PostHandler) ThumbUp(w http.ResponseWriter, r *http.Request) {
	h.toggleThumb(w, r, true)
}

// ThumbDown handles POST /api/v1/comments/{comment_id}/thumb-down
func (h *PostHandler) ThumbDown(w http.ResponseWriter, r *http.Request) {
	h.toggleThumb(w, r, false)
}

func (h *PostHandler) toggleThumb(w http.ResponseWriter, r *http.Request, up bool) {
	actorID := middleware.GetUserID(r.Context())
	commentID := chi.URLParam(r, "comment_id")
	if err := h.store.ToggleThumb(commentID, actorID, up); err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
