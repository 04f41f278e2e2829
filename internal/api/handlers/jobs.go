package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-pdf/internal/api/middleware"
	"github.com/dvloznov/statement-pdf/internal/jobs"
	"github.com/dvloznov/statement-pdf/internal/statement"
)

// JobsHandler handles background statement jobs.
type JobsHandler struct {
	store     jobs.JobStore
	publisher jobs.Publisher
	builder   *statement.Builder
	maxBody   int64
	log       zerolog.Logger
}

// NewJobsHandler creates a new jobs handler. A nil publisher disables
// enqueueing; lookups keep working.
func NewJobsHandler(store jobs.JobStore, publisher jobs.Publisher, builder *statement.Builder, maxBody int64, log zerolog.Logger) *JobsHandler {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &JobsHandler{
		store:     store,
		publisher: publisher,
		builder:   builder,
		maxBody:   maxBody,
		log:       log,
	}
}

// EnqueueStatement handles POST /api/statements/jobs
func (h *JobsHandler) EnqueueStatement(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Background jobs are disabled")
		return
	}

	req, err := decodeStatementRequest(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		writeClientError(w, err)
		return
	}
	// Reject what a worker could never render before it reaches the queue.
	if _, _, err := h.builder.Build(req); err != nil {
		writeClientError(w, err)
		return
	}

	ctx := r.Context()
	job := &jobs.RenderStatementJob{
		RequestID:  middleware.GetRequestID(ctx),
		Request:    req,
		PersonName: req.Person.Name,
	}

	if err := h.publisher.PublishRenderStatement(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue render job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue render job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("person", job.PersonName).Msg("Render job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		PersonName: query.Get("person"),
		Status:     jobs.JobStatus(query.Get("status")),
		Limit:      queryInt(r, "limit"),
		Offset:     queryInt(r, "offset"),
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
