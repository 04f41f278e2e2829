package worker

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-pdf/internal/audit"
	"github.com/dvloznov/statement-pdf/internal/delivery"
	"github.com/dvloznov/statement-pdf/internal/domain"
	"github.com/dvloznov/statement-pdf/internal/jobs"
	"github.com/dvloznov/statement-pdf/internal/ledger"
	"github.com/dvloznov/statement-pdf/internal/render"
	"github.com/dvloznov/statement-pdf/internal/statement"
	"github.com/dvloznov/statement-pdf/internal/store"
)

type otherJob struct{}

func (otherJob) GetID() string             { return "x" }
func (otherJob) GetType() jobs.JobType     { return "other" }
func (otherJob) GetStatus() jobs.JobStatus { return jobs.JobStatusPending }

type failingRecorder struct{ calls int }

func (f *failingRecorder) Record(ctx context.Context, e *audit.Entry) error {
	f.calls++
	return errors.New("audit down")
}

func (f *failingRecorder) Recent(ctx context.Context, limit int) ([]*audit.Entry, error) {
	return nil, nil
}

func validRequest() *domain.StatementRequest {
	return &domain.StatementRequest{
		Transactions: []domain.TransactionRecord{
			{Date: "2024-01-01", Description: "Salary", Type: domain.TransactionCredit, Amount: decimal.NewFromInt(100)},
			{Date: "2024-01-02", Description: "Rent", Type: domain.TransactionDebit, Amount: decimal.NewFromInt(-30)},
		},
		Balance: &domain.BalanceInfo{CurrentBalance: decimal.NewFromInt(70), Currency: "USD"},
		Person:  domain.Person{Name: "Jane Doe", Mobile: "555"},
	}
}

func newService(rec *render.Recorder) *statement.Service {
	return statement.NewService(statement.NewBuilder(statement.Options{OrganizationName: "Org"}), rec)
}

func TestRenderHandler_Success(t *testing.T) {
	mem := store.NewMemory()
	recorder := audit.NewMemory(10)
	h := RenderHandler(newService(&render.Recorder{}), delivery.NewPersist(mem, "https://files.example.com"), recorder, ledger.RunningBalance, zerolog.Nop())

	job := &jobs.RenderStatementJob{JobID: "j1", RequestID: "r1", Request: validRequest()}
	if err := h(context.Background(), job); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	if job.FileName != "Jane_Doe_transactions.pdf" {
		t.Errorf("FileName = %q", job.FileName)
	}
	if job.DownloadURL != "https://files.example.com/generated_pdfs/Jane_Doe_transactions.pdf" {
		t.Errorf("DownloadURL = %q", job.DownloadURL)
	}

	rc, err := mem.Open(context.Background(), job.FileName)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != render.Placeholder {
		t.Errorf("stored bytes = %q", data)
	}

	entries, _ := recorder.Recent(context.Background(), 10)
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Outcome != audit.OutcomeSuccess || e.JobID != "j1" || e.RequestID != "r1" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if !e.TotalDebit.Equal(decimal.NewFromInt(30)) {
		t.Errorf("TotalDebit = %s", e.TotalDebit)
	}
}

func TestRenderHandler_Failures(t *testing.T) {
	tests := []struct {
		name          string
		job           jobs.Job
		renderErr     error
		storeErr      error
		wantPermanent bool
	}{
		{"wrong job type", otherJob{}, nil, nil, false},
		{"missing request", &jobs.RenderStatementJob{JobID: "j"}, nil, nil, true},
		{"invalid request", &jobs.RenderStatementJob{JobID: "j", Request: &domain.StatementRequest{}}, nil, nil, true},
		{"render failure retried", &jobs.RenderStatementJob{JobID: "j", Request: validRequest()}, render.ErrRender, nil, false},
		{"store failure retried", &jobs.RenderStatementJob{JobID: "j", Request: validRequest()}, nil, errors.New("bucket gone"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemory()
			mem.Err = tt.storeErr
			h := RenderHandler(newService(&render.Recorder{Err: tt.renderErr}), delivery.NewPersist(mem, ""), audit.NewMemory(10), ledger.RunningBalance, zerolog.Nop())

			err := h(context.Background(), tt.job)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, jobs.ErrPermanent); got != tt.wantPermanent {
				t.Errorf("permanent = %v, want %v (err: %v)", got, tt.wantPermanent, err)
			}
		})
	}
}

func TestRenderHandler_AuditFailureIgnored(t *testing.T) {
	recorder := &failingRecorder{}
	h := RenderHandler(newService(&render.Recorder{}), delivery.NewPersist(store.NewMemory(), ""), recorder, ledger.Totals, zerolog.Nop())

	if err := h(context.Background(), &jobs.RenderStatementJob{JobID: "j", Request: validRequest()}); err != nil {
		t.Fatalf("audit failure must not fail the job: %v", err)
	}
	if recorder.calls != 1 {
		t.Errorf("Record calls = %d, want 1", recorder.calls)
	}
}
