package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/statement-pdf/internal/domain"
)

// ErrJobNotFound is returned by JobStore lookups for unknown IDs.
var ErrJobNotFound = errors.New("job not found")

// ErrPermanent marks handler failures a retry cannot fix. Queues do not
// retry errors wrapping it.
var ErrPermanent = errors.New("permanent job failure")

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeRenderStatement renders and persists a statement PDF.
	JobTypeRenderStatement JobType = "render_statement"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// RenderStatementJob represents a statement to render in the background.
type RenderStatementJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// RequestID links the job to the HTTP request that created it.
	RequestID string `json:"request_id,omitempty"`

	// Request is the validated statement request. It is kept out of API responses.
	Request *domain.StatementRequest `json:"-"`

	// PersonName is copied from the request for listing.
	PersonName string `json:"person_name"`

	// FileName is the stored file once the job completed.
	FileName string `json:"file_name,omitempty"`

	// DownloadURL points at the stored file once the job completed.
	DownloadURL string `json:"download_url,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *RenderStatementJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *RenderStatementJob) GetType() JobType {
	return JobTypeRenderStatement
}

// GetStatus implements the Job interface.
func (j *RenderStatementJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishRenderStatement publishes a statement rendering job.
	PublishRenderStatement(ctx context.Context, job *RenderStatementJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *RenderStatementJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*RenderStatementJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*RenderStatementJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// PersonName filters jobs by person.
	PersonName string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
