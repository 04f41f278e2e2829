package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-pdf/internal/api/middleware"
	"github.com/dvloznov/statement-pdf/internal/store"
)

// FilesHandler serves persisted statements.
type FilesHandler struct {
	store store.Store
	log   zerolog.Logger
}

// NewFilesHandler creates a new files handler.
func NewFilesHandler(s store.Store, log zerolog.Logger) *FilesHandler {
	return &FilesHandler{
		store: s,
		log:   log,
	}
}

// ServeFile handles GET /generated_pdfs/{filename}
func (h *FilesHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when it is set, leaving the parameter escaped.
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			middleware.WriteError(w, http.StatusNotFound, "File not found")
			return
		}
		name = unescaped
	}
	if !store.ValidName(name) {
		middleware.WriteError(w, http.StatusNotFound, "File not found")
		return
	}

	rc, err := h.store.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "File not found")
			return
		}
		h.log.Error().Err(err).Str("file_name", name).Msg("Failed to open statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.log.Warn().Err(err).Str("file_name", name).Msg("Failed to send statement")
	}
}
