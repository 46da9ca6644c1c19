package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the chi router with all API routes.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Conversion hosts
		r.Post("/conversion-hosts", s.CreateConversionHost)
		r.Get("/conversion-hosts", s.ListConversionHosts)
		r.Get("/conversion-hosts/{id}", s.GetConversionHost)
		r.Delete("/conversion-hosts/{id}", s.DeleteConversionHost)

		// Inventory browsing
		r.Get("/resources/{type}", s.ListResourcesOfType)

		// Tasks
		r.Get("/tasks", s.ListTasks)
		r.Get("/tasks/{id}", s.GetTask)
	})

	// WebSocket (outside /api to avoid JSON content-type assumptions)
	r.Get("/ws/tasks/{id}/logs", s.StreamTaskLogs)

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
