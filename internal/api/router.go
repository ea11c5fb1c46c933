package api

import (
	"net/http"

	"github.com/bobr/forum-website/internal/api/handlers"
	"github.com/bobr/forum-website/internal/api/middleware"
	"github.com/bobr/forum-website/internal/chat"
	"github.com/bobr/forum-website/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, hub *chat.Hub, registry *chat.Registry) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	postHandler := handlers.NewPostHandler(services.Post)
	accountHandler := handlers.NewAccountHandler(services.Account, services.Auth)
	chatHandler := handlers.NewChatHandler(registry, services.Auth)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/reset-password", authHandler.RequestReset)
			r.Post("/reset-password/{token}", authHandler.ResetPassword)
			r.Post("/confirm-email/{token}", authHandler.ConfirmEmail)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Post routes: reads are public, writes require auth
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.List)
			r.Get("/{id}", postHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Post("/", postHandler.Create)
				r.Put("/{id}", postHandler.Update)
				r.Delete("/{id}", postHandler.Delete)
			})
		})

		r.Get("/users/{username}/posts", postHandler.ListByUser)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/account", func(r chi.Router) {
				r.Get("/", accountHandler.Get)
				r.Put("/", accountHandler.Update)
				r.Post("/picture", accountHandler.UploadPicture)
			})

			r.Post("/chat/enter", chatHandler.Enter)
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
