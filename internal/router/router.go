package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"portfolio-backend/internal/handlers"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/websocket"
)

func New(
	chatHandler *handlers.ChatHandler,
	visionHandler *handlers.VisionHandler,
	wsHub *websocket.Hub,
	healthLimiter middleware.Limiter,
	chatLimiter middleware.Limiter,
	allowedOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(allowedOrigins))

	// Health check
	r.Group(func(r chi.Router) {
		r.Use(healthLimiter.Middleware)
		r.Get("/", handlers.Health)
		r.Get("/health", handlers.Health)
	})

	r.Route("/api", func(r chi.Router) {

		// ──── Chat ────
		r.Route("/chat", func(r chi.Router) {
			r.With(chatLimiter.Middleware).Post("/", chatHandler.Stream)
			r.Get("/ws", wsHub.HandleWebSocket)
		})

		// ──── Vision ────
		r.Route("/vision", func(r chi.Router) {
			r.Use(chatLimiter.Middleware)
			r.Post("/analyze", visionHandler.Analyze)
		})
	})

	return r
}
