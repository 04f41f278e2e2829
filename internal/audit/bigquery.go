package audit

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
)

// DefaultTable is the audit table name inside the configured dataset.
const DefaultTable = "statement_audit"

// StatementRow is the BigQuery representation of an Entry.
type StatementRow struct {
	EntryID          string              `bigquery:"entry_id"`   // REQUIRED
	RequestID        bigquery.NullString `bigquery:"request_id"` // NULLABLE
	JobID            bigquery.NullString `bigquery:"job_id"`     // NULLABLE
	PersonName       string              `bigquery:"person_name"`
	TransactionCount int64               `bigquery:"transaction_count"`
	TotalCredit      *big.Rat            `bigquery:"total_credit"`    // NUMERIC
	TotalDebit       *big.Rat            `bigquery:"total_debit"`     // NUMERIC
	CurrentBalance   *big.Rat            `bigquery:"current_balance"` // NUMERIC
	Currency         string              `bigquery:"currency"`
	Layout           string              `bigquery:"layout"`
	Delivery         string              `bigquery:"delivery"`
	FileName         bigquery.NullString `bigquery:"file_name"` // NULLABLE
	Bytes            int64               `bigquery:"bytes"`
	Outcome          string              `bigquery:"outcome"`
	Error            bigquery.NullString `bigquery:"error"` // NULLABLE
	DurationMs       int64               `bigquery:"duration_ms"`
	CreatedTS        time.Time           `bigquery:"created_ts"` // REQUIRED
}

// BigQuery writes audit entries to a BigQuery table.
type BigQuery struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	tableID   string
}

// NewBigQuery creates a client for projectID. Rows go to datasetID.tableID.
func NewBigQuery(ctx context.Context, projectID, datasetID, tableID string) (*BigQuery, error) {
	if projectID == "" || datasetID == "" {
		return nil, fmt.Errorf("NewBigQuery: project and dataset are required")
	}
	if tableID == "" {
		tableID = DefaultTable
	}

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQuery: creating client: %w", err)
	}
	return &BigQuery{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
		tableID:   tableID,
	}, nil
}

// Close closes the BigQuery client connection.
func (b *BigQuery) Close() error {
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}

// CreateTableSQL returns the DDL for the audit table.
func (b *BigQuery) CreateTableSQL() string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS `+"`%s.%s.%s`"+` (
			entry_id          STRING NOT NULL,
			request_id        STRING,
			job_id            STRING,
			person_name       STRING,
			transaction_count INT64,
			total_credit      NUMERIC,
			total_debit       NUMERIC,
			current_balance   NUMERIC,
			currency          STRING,
			layout            STRING,
			delivery          STRING,
			file_name         STRING,
			bytes             INT64,
			outcome           STRING,
			error             STRING,
			duration_ms       INT64,
			created_ts        TIMESTAMP NOT NULL
		)
		PARTITION BY DATE(created_ts)
	`, b.projectID, b.datasetID, b.tableID)
}

// EnsureTable creates the audit table if it doesn't exist.
func (b *BigQuery) EnsureTable(ctx context.Context) error {
	job, err := b.client.Query(b.CreateTableSQL()).Run(ctx)
	if err != nil {
		return fmt.Errorf("EnsureTable: running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("EnsureTable: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("EnsureTable: job error: %w", err)
	}
	return nil
}

// Record implements Recorder.
func (b *BigQuery) Record(ctx context.Context, e *Entry) error {
	fillDefaults(e)

	inserter := b.client.Dataset(b.datasetID).Table(b.tableID).Inserter()
	if err := inserter.Put(ctx, ToRow(e)); err != nil {
		return fmt.Errorf("Record: inserting row: %w", err)
	}
	return nil
}

// Recent implements Recorder.
func (b *BigQuery) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := fmt.Sprintf(`
		SELECT
			entry_id,
			request_id,
			job_id,
			person_name,
			transaction_count,
			total_credit,
			total_debit,
			current_balance,
			currency,
			layout,
			delivery,
			file_name,
			bytes,
			outcome,
			error,
			duration_ms,
			created_ts
		FROM `+"`%s.%s.%s`"+`
		ORDER BY created_ts DESC
		LIMIT @limit
	`, b.projectID, b.datasetID, b.tableID)

	q := b.client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: limit},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("Recent: reading query: %w", err)
	}

	var entries []*Entry
	for {
		var row StatementRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Recent: iterating: %w", err)
		}
		entries = append(entries, FromRow(&row))
	}

	return entries, nil
}

// ToRow converts an entry for insertion.
func ToRow(e *Entry) *StatementRow {
	return &StatementRow{
		EntryID:          e.ID,
		RequestID:        nullString(e.RequestID),
		JobID:            nullString(e.JobID),
		PersonName:       e.PersonName,
		TransactionCount: int64(e.TransactionCount),
		TotalCredit:      e.TotalCredit.Rat(),
		TotalDebit:       e.TotalDebit.Rat(),
		CurrentBalance:   e.CurrentBalance.Rat(),
		Currency:         e.Currency,
		Layout:           e.Layout,
		Delivery:         e.Delivery,
		FileName:         nullString(e.FileName),
		Bytes:            int64(e.Bytes),
		Outcome:          string(e.Outcome),
		Error:            nullString(e.Error),
		DurationMs:       e.Duration.Milliseconds(),
		CreatedTS:        e.CreatedAt,
	}
}

// FromRow converts a queried row back to an entry.
func FromRow(row *StatementRow) *Entry {
	return &Entry{
		ID:               row.EntryID,
		RequestID:        row.RequestID.StringVal,
		JobID:            row.JobID.StringVal,
		PersonName:       row.PersonName,
		TransactionCount: int(row.TransactionCount),
		TotalCredit:      ratToDecimal(row.TotalCredit),
		TotalDebit:       ratToDecimal(row.TotalDebit),
		CurrentBalance:   ratToDecimal(row.CurrentBalance),
		Currency:         row.Currency,
		Layout:           row.Layout,
		Delivery:         row.Delivery,
		FileName:         row.FileName.StringVal,
		Bytes:            int(row.Bytes),
		Outcome:          Outcome(row.Outcome),
		Error:            row.Error.StringVal,
		Duration:         time.Duration(row.DurationMs) * time.Millisecond,
		CreatedAt:        row.CreatedTS,
	}
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}

// ratToDecimal converts a NUMERIC value; BigQuery NUMERIC carries nine
// fractional digits.
func ratToDecimal(r *big.Rat) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(r.FloatString(9))
	if err != nil {
		return decimal.Zero
	}
	return d
}

var _ Recorder = (*BigQuery)(nil)
