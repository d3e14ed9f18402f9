package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures a chi router with all the application's
// routes.
func NewRouter(conversationHandler *ConversationHandler, opsHandler *OpsHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoint for liveness and readiness probes.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Standard JSON API routes get a request timeout so client
		// connections never hang indefinitely.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Post("/conversations", conversationHandler.CreateConversation)
			r.Get("/conversations", conversationHandler.GetConversations)
			r.Get("/conversations/{conversationID}", conversationHandler.GetConversation)
			r.Put("/conversations/{conversationID}/title", conversationHandler.UpdateConversationTitle)
			r.Delete("/conversations/{conversationID}", conversationHandler.DeleteConversation)

			r.Get("/ops/metrics", opsHandler.GetMetrics)
			r.Post("/ops/reset", opsHandler.Reset)
		})

		// A turn can run many model rounds and tool calls, so it gets no
		// router-level timeout. The orchestrator bounds each round with its
		// own stream timeout instead.
		r.Group(func(r chi.Router) {
			r.Post("/conversations/{conversationID}/turns", conversationHandler.HandleTurn)
		})
	})

	return r
}
