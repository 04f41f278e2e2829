package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-pdf/internal/api/middleware"
	"github.com/dvloznov/statement-pdf/internal/audit"
	"github.com/dvloznov/statement-pdf/internal/delivery"
	"github.com/dvloznov/statement-pdf/internal/domain"
	"github.com/dvloznov/statement-pdf/internal/ledger"
	"github.com/dvloznov/statement-pdf/internal/logger"
	"github.com/dvloznov/statement-pdf/internal/metrics"
	"github.com/dvloznov/statement-pdf/internal/statement"
)

// Client-facing messages.
const (
	msgMissingData     = "Missing required data"
	msgInvalidBody     = "Invalid request body"
	msgInvalidType     = "Invalid transaction type"
	msgGenerateFailure = "Failed to generate PDF"
)

// DefaultMaxBodyBytes bounds statement request bodies.
const DefaultMaxBodyBytes = 10 << 20

// StatementsHandler handles statement generation.
type StatementsHandler struct {
	service  *statement.Service
	strategy delivery.Strategy
	recorder audit.Recorder
	maxBody  int64
	log      zerolog.Logger
}

// NewStatementsHandler creates a new statements handler. recorder may be nil.
func NewStatementsHandler(service *statement.Service, strategy delivery.Strategy, recorder audit.Recorder, maxBody int64, log zerolog.Logger) *StatementsHandler {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &StatementsHandler{
		service:  service,
		strategy: strategy,
		recorder: recorder,
		maxBody:  maxBody,
		log:      log,
	}
}

// GeneratePDF handles POST /generate-pdf
func (h *StatementsHandler) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := h.log.With().Str("request_id", middleware.GetRequestID(r.Context())).Logger()
	ctx := logger.WithContext(r.Context(), log)
	r = r.WithContext(ctx)

	req, err := decodeStatementRequest(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		h.clientError(w, log, err)
		return
	}

	out, err := h.service.Generate(ctx, req)
	if err != nil {
		if isClientError(err) {
			h.clientError(w, log, err)
			return
		}
		log.Error().Err(err).Str("person", req.Person.Name).Msg("Failed to render statement")
		metrics.StatementRequests.WithLabelValues(metrics.OutcomeRenderError).Inc()
		h.record(ctx, log, req, nil, delivery.Receipt{}, start, err)
		middleware.WriteError(w, http.StatusInternalServerError, msgGenerateFailure)
		return
	}

	receipt, err := h.strategy.Deliver(w, r, req.Person, out.PDF)
	if err != nil {
		if errors.Is(err, delivery.ErrResponseWritten) {
			// The client went away mid-stream; the statement itself was fine.
			log.Warn().Err(err).Msg("Failed to finish streaming statement")
			metrics.StatementRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
			h.record(ctx, log, req, out.Ledger, receipt, start, nil)
			return
		}
		log.Error().Err(err).Str("person", req.Person.Name).Msg("Failed to deliver statement")
		metrics.StatementRequests.WithLabelValues(metrics.OutcomeStoreError).Inc()
		h.record(ctx, log, req, out.Ledger, receipt, start, err)
		middleware.WriteError(w, http.StatusInternalServerError, msgGenerateFailure)
		return
	}

	metrics.StatementRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info().
		Str("person", req.Person.Name).
		Str("delivery", string(receipt.Mode)).
		Str("file_name", receipt.FileName).
		Int("rows", len(out.Ledger.Rows)).
		Int("bytes", receipt.Bytes).
		Msg("Statement generated")

	h.record(ctx, log, req, out.Ledger, receipt, start, nil)
}

func (h *StatementsHandler) clientError(w http.ResponseWriter, log zerolog.Logger, err error) {
	metrics.StatementRequests.WithLabelValues(metrics.OutcomeClientError).Inc()
	log.Info().Err(err).Msg("Rejected statement request")
	writeClientError(w, err)
}

func (h *StatementsHandler) record(ctx context.Context, log zerolog.Logger, req *domain.StatementRequest, l *ledger.Ledger, receipt delivery.Receipt, start time.Time, failure error) {
	if h.recorder == nil {
		return
	}

	entry := audit.NewEntry(req, l)
	entry.RequestID = middleware.GetRequestID(ctx)
	entry.Layout = string(h.service.Builder().Options().Layout)
	entry.Delivery = string(h.strategy.Mode())
	entry.FileName = receipt.FileName
	entry.Bytes = receipt.Bytes
	entry.Duration = time.Since(start)
	entry.Outcome = audit.OutcomeSuccess
	if failure != nil {
		entry.Outcome = audit.OutcomeFailed
		entry.Error = failure.Error()
	}

	if err := h.recorder.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Msg("Failed to record audit entry")
	}
}

// decodeStatementRequest reads a statement request body. An empty body is
// treated like an empty object, so it fails validation rather than decoding.
func decodeStatementRequest(body io.Reader) (*domain.StatementRequest, error) {
	var req domain.StatementRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrMissingData
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBody, err)
	}
	return &req, nil
}

func isClientError(err error) bool {
	return errors.Is(err, domain.ErrMissingData) ||
		errors.Is(err, domain.ErrInvalidBody) ||
		errors.Is(err, ledger.ErrUnknownTransactionType)
}

// writeClientError answers 400 with a plain text message.
func writeClientError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingData):
		middleware.WriteText(w, http.StatusBadRequest, msgMissingData)
	case errors.Is(err, ledger.ErrUnknownTransactionType):
		middleware.WriteText(w, http.StatusBadRequest, msgInvalidType)
	default:
		middleware.WriteText(w, http.StatusBadRequest, msgInvalidBody)
	}
}

func queryInt(r *http.Request, key string) int {
	if s := r.URL.Query().Get(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
