// Package api wires the HTTP surface of the statement service.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-pdf/internal/api/handlers"
	"github.com/dvloznov/statement-pdf/internal/api/middleware"
)

// Handlers groups the endpoint handlers. Nil entries leave their routes unmounted.
type Handlers struct {
	Statements *handlers.StatementsHandler
	Files      *handlers.FilesHandler
	Jobs       *handlers.JobsHandler
	Audit      *handlers.AuditHandler
	Metrics    http.Handler
}

// NewRouter builds the chi router with the standard middleware chain.
func NewRouter(h Handlers, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	if h.Statements != nil {
		r.Post("/generate-pdf", h.Statements.GeneratePDF)
	}
	if h.Files != nil {
		r.Get("/generated_pdfs/{filename}", h.Files.ServeFile)
	}

	if h.Audit == nil && h.Jobs == nil {
		return r
	}
	r.Route("/api", func(r chi.Router) {
		if h.Audit != nil {
			r.Get("/statements", h.Audit.ListStatements)
		}
		if h.Jobs != nil {
			r.Post("/statements/jobs", h.Jobs.EnqueueStatement)
			r.Get("/jobs", h.Jobs.ListJobs)
			r.Get("/jobs/{id}", h.Jobs.GetJob)
		}
	})

	return r
}
