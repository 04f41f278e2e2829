// Package audit records one entry per generated statement.
package audit

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-pdf/internal/domain"
	"github.com/dvloznov/statement-pdf/internal/ledger"
)

// Outcome of a statement request.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// DefaultLimit caps Recent when the caller passes zero.
const DefaultLimit = 50

// Entry describes a single statement generation.
type Entry struct {
	ID               string          `json:"id"`
	RequestID        string          `json:"request_id,omitempty"`
	JobID            string          `json:"job_id,omitempty"`
	PersonName       string          `json:"person_name"`
	TransactionCount int             `json:"transaction_count"`
	TotalCredit      decimal.Decimal `json:"total_credit"`
	TotalDebit       decimal.Decimal `json:"total_debit"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	Currency         string          `json:"currency"`
	Layout           string          `json:"layout"`
	Delivery         string          `json:"delivery"`
	FileName         string          `json:"file_name,omitempty"`
	Bytes            int             `json:"bytes"`
	Outcome          Outcome         `json:"outcome"`
	Error            string          `json:"error,omitempty"`
	Duration         time.Duration   `json:"duration_ns"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Recorder stores and lists audit entries.
type Recorder interface {
	// Record stores e. A missing ID or CreatedAt is filled in.
	Record(ctx context.Context, e *Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]*Entry, error)
}

// NewEntry fills the statement fields of an entry from a validated request
// and its ledger. l may be nil when the ledger could not be derived.
func NewEntry(req *domain.StatementRequest, l *ledger.Ledger) *Entry {
	e := &Entry{
		PersonName:       req.Person.Name,
		TransactionCount: len(req.Transactions),
	}
	if req.Balance != nil {
		e.CurrentBalance = req.Balance.CurrentBalance
		e.Currency = req.Balance.Currency
	}
	if l != nil {
		e.TotalCredit = l.TotalCredit
		e.TotalDebit = l.TotalDebit
	}
	return e
}
