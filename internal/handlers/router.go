package handlers

import (
	"net/http"

	"blanc-client/internal/middleware"
	"blanc-client/internal/repository"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the dev server's full route tree. Exposed so
// integration tests can mount it on an httptest server.
func NewRouter(store *repository.Store, auth *middleware.Auth, hub *Hub, smsCode string) http.Handler {
	userHandler := NewUserHandler(store, auth, hub, smsCode)
	requestHandler := NewRequestHandler(store, hub)
	conversationHandler := NewConversationHandler(store, hub)
	postHandler := NewPostHandler(store, hub)
	wsHandler := NewWebSocketHandler(hub, auth)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/sms", userHandler.RequestSMS)
		r.Post("/sms/verify", userHandler.VerifySMS)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(auth))

			r.Post("/session", userHandler.CreateSession)
			r.Get("/users/me", userHandler.GetMe)
			r.Patch("/users/me", userHandler.UpdateMe)
			r.Post("/users/me/images", userHandler.UploadImage)
			r.Delete("/users/me/images/{index}", userHandler.DeleteImage)
			r.Post("/users/me/review", userHandler.SubmitReview)
			r.Get("/users/me/favorites", userHandler.ListFavorites)
			r.Get("/users/me/raters", userHandler.ListRaters)
			r.Get("/users/{user_id}", userHandler.GetUser)
			r.Post("/users/{user_id}/star", userHandler.RateUser)
			r.Post("/users/{user_id}/poke", userHandler.Poke)
			r.Post("/reports", userHandler.Report)
			r.Post("/points/purchase", userHandler.PurchasePoints)

			r.Get("/requests", requestHandler.List)
			r.Post("/requests", requestHandler.Create)
			r.Get("/requests/{request_id}", requestHandler.Get)
			r.Post("/requests/{request_id}/accept", requestHandler.Accept)
			r.Post("/requests/{request_id}/decline", requestHandler.Decline)

			r.Get("/conversations", conversationHandler.List)
			r.Get("/conversations/{conversation_id}", conversationHandler.Get)
			r.Post("/conversations/{conversation_id}/messages", conversationHandler.SendMessage)
			r.Post("/conversations/{conversation_id}/open", conversationHandler.Open)
			r.Delete("/conversations/{conversation_id}", conversationHandler.Leave)

			r.Get("/posts", postHandler.List)
			r.Post("/posts", postHandler.Create)
			r.Get("/posts/{post_id}", postHandler.Get)
			r.Post("/posts/{post_id}/favorite", postHandler.Favorite)
			r.Delete("/posts/{post_id}/favorite", postHandler.Unfavorite)
			r.Post("/posts/{post_id}/comments", postHandler.AddComment)
			r.Post("/comments/{comment_id}/thumb-up", postHandler.ThumbUp)
			r.Post("/comments/{comment_id}/thumb-down", postHandler.ThumbDown)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	return r
}
