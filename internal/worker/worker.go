// Package worker renders queued statements in the background.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-pdf/internal/audit"
	"github.com/dvloznov/statement-pdf/internal/delivery"
	"github.com/dvloznov/statement-pdf/internal/domain"
	"github.com/dvloznov/statement-pdf/internal/jobs"
	"github.com/dvloznov/statement-pdf/internal/ledger"
	"github.com/dvloznov/statement-pdf/internal/logger"
	"github.com/dvloznov/statement-pdf/internal/statement"
)

// Renderer is the part of statement.Service the worker needs.
type Renderer interface {
	Generate(ctx context.Context, req *domain.StatementRequest) (*statement.Output, error)
}

// Saver persists a rendered statement.
type Saver interface {
	Save(ctx context.Context, person domain.Person, pdf []byte) (delivery.Receipt, error)
}

// RenderHandler returns a job handler that renders each statement and
// stores it. Audit failures are logged and never fail the job.
func RenderHandler(svc Renderer, saver Saver, recorder audit.Recorder, layout ledger.Mode, log zerolog.Logger) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		renderJob, ok := job.(*jobs.RenderStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		jobLog := log.With().
			Str("job_id", renderJob.JobID).
			Str("request_id", renderJob.RequestID).
			Int("attempt", renderJob.RetryCount+1).
			Logger()
		ctx = logger.WithContext(ctx, jobLog)

		if renderJob.Request == nil {
			return fmt.Errorf("job %s has no request: %w", renderJob.JobID, jobs.ErrPermanent)
		}

		jobLog.Info().Str("person", renderJob.PersonName).Msg("Processing render job")

		start := time.Now()
		entry := audit.NewEntry(renderJob.Request, nil)
		entry.JobID = renderJob.JobID
		entry.RequestID = renderJob.RequestID
		entry.Layout = string(layout)
		entry.Delivery = string(delivery.ModePersist)

		receipt, err := run(ctx, svc, saver, renderJob, entry)
		entry.Duration = time.Since(start)
		if err != nil {
			entry.Outcome = audit.OutcomeFailed
			entry.Error = err.Error()
			record(ctx, recorder, entry, jobLog)

			if errors.Is(err, domain.ErrMissingData) || errors.Is(err, ledger.ErrUnknownTransactionType) {
				err = fmt.Errorf("%w: %w", jobs.ErrPermanent, err)
			}
			jobLog.Error().Err(err).Msg("Render job failed")
			return err
		}

		renderJob.FileName = receipt.FileName
		renderJob.DownloadURL = receipt.DownloadURL

		entry.Outcome = audit.OutcomeSuccess
		entry.FileName = receipt.FileName
		entry.Bytes = receipt.Bytes
		record(ctx, recorder, entry, jobLog)

		jobLog.Info().
			Str("file_name", receipt.FileName).
			Int("bytes", receipt.Bytes).
			Msg("Render job completed")
		return nil
	}
}

func run(ctx context.Context, svc Renderer, saver Saver, job *jobs.RenderStatementJob, entry *audit.Entry) (delivery.Receipt, error) {
	out, err := svc.Generate(ctx, job.Request)
	if err != nil {
		return delivery.Receipt{}, err
	}
	entry.TotalCredit = out.Ledger.TotalCredit
	entry.TotalDebit = out.Ledger.TotalDebit

	receipt, err := saver.Save(ctx, job.Request.Person, out.PDF)
	if err != nil {
		return delivery.Receipt{}, err
	}
	return receipt, nil
}

func record(ctx context.Context, recorder audit.Recorder, entry *audit.Entry, log zerolog.Logger) {
	if recorder == nil {
		return
	}
	if err := recorder.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Msg("Failed to record audit entry")
	}
}
