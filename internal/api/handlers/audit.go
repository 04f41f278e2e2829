package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-pdf/internal/api/middleware"
	"github.com/dvloznov/statement-pdf/internal/audit"
)

// AuditHandler lists generated statements.
type AuditHandler struct {
	recorder audit.Recorder
	log      zerolog.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(recorder audit.Recorder, log zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		recorder: recorder,
		log:      log,
	}
}

// ListStatements handles GET /api/statements
func (h *AuditHandler) ListStatements(w http.ResponseWriter, r *http.Request) {
	entries, err := h.recorder.Recent(r.Context(), queryInt(r, "limit"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list statements")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list statements")
		return
	}

	if entries == nil {
		entries = []*audit.Entry{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"statements": entries,
		"count":      len(entries),
	})
}
