package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"orderboard/internal"
	"orderboard/ports"
)

// NewRouter builds the JSON API. Routes are relative so the router can be
// mounted under any prefix.
func NewRouter(board ports.BoardPort, logger *internal.Logger) http.Handler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	h := &Handler{board: board, logger: logger.WithComponent("API")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/orders", h.ListOrders)
	r.Get("/summary", h.GetSummary)
	r.Get("/statuses", h.ListStatuses)
	r.Get("/report", h.GetReport)
	r.Get("/health", h.GetHealth)
	r.Post("/refresh", h.Refresh)

	return r
}
