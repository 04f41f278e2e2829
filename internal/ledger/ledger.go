// Package ledger derives the per-row and aggregate figures shown on a statement.
package ledger

import (
	"errors"
	"fmt"

	"github.com/dvloznov/statement-pdf/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrUnknownTransactionType is returned for a record whose type is neither credit nor debit.
var ErrUnknownTransactionType = errors.New("unknown transaction type")

// SignConvention states how debit amounts are stored at rest.
type SignConvention string

const (
	// SignedDebits means debits arrive negative (-20 is a 20.00 debit). Amounts
	// are summed as-is for the running balance and negated for the debit cell.
	SignedDebits SignConvention = "signed"

	// MagnitudeDebits means debits arrive as positive magnitudes (20 is a 20.00
	// debit). The running balance subtracts |amount| for debits.
	MagnitudeDebits SignConvention = "magnitude"
)

// ParseSignConvention maps a configuration value onto a SignConvention.
func ParseSignConvention(s string) (SignConvention, error) {
	switch SignConvention(s) {
	case SignedDebits, MagnitudeDebits:
		return SignConvention(s), nil
	case "":
		return SignedDebits, nil
	default:
		return "", fmt.Errorf("unknown sign convention %q", s)
	}
}

// Mode selects the presentation of derived figures.
type Mode string

const (
	// RunningBalance adds a per-row cumulative balance column.
	RunningBalance Mode = "running-balance"
	// Totals appends total credit/debit and closing balance rows.
	Totals Mode = "totals"
)

// ParseMode maps a configuration value onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case RunningBalance, Totals:
		return Mode(s), nil
	case "":
		return RunningBalance, nil
	default:
		return "", fmt.Errorf("unknown layout mode %q", s)
	}
}

// Row is one transaction after the credit/debit split. Exactly one of Credit
// and Debit is non-empty.
type Row struct {
	Date        string
	Description string
	Type        domain.TransactionType
	Credit      string
	Debit       string
	Running     decimal.Decimal
}

// Ledger is the derived view of an ordered transaction list.
type Ledger struct {
	Rows        []Row
	TotalCredit decimal.Decimal
	TotalDebit  decimal.Decimal
}

// Net returns total credits minus total debits.
func (l *Ledger) Net() decimal.Decimal {
	return l.TotalCredit.Sub(l.TotalDebit)
}

// Contribution returns the amount a record adds to the running balance.
func (c SignConvention) Contribution(tx domain.TransactionRecord) decimal.Decimal {
	if c == MagnitudeDebits && tx.Type == domain.TransactionDebit {
		return tx.Amount.Abs().Neg()
	}
	return tx.Amount
}

// debitCell returns the displayed debit value for a debit record.
func (c SignConvention) debitCell(amount decimal.Decimal) decimal.Decimal {
	if c == MagnitudeDebits {
		return amount.Abs()
	}
	return amount.Neg()
}

// Calculate splits each record into credit/debit cells, accumulates the
// running balance in input order and sums the totals.
func Calculate(txs []domain.TransactionRecord, convention SignConvention) (*Ledger, error) {
	l := &Ledger{
		Rows:        make([]Row, 0, len(txs)),
		TotalCredit: decimal.Zero,
		TotalDebit:  decimal.Zero,
	}

	running := decimal.Zero
	for i, tx := range txs {
		row := Row{
			Date:        tx.Date,
			Description: tx.Description,
			Type:        tx.Type,
		}

		switch tx.Type {
		case domain.TransactionCredit:
			row.Credit = tx.Amount.StringFixed(2)
			l.TotalCredit = l.TotalCredit.Add(tx.Amount)
		case domain.TransactionDebit:
			row.Debit = convention.debitCell(tx.Amount).StringFixed(2)
			l.TotalDebit = l.TotalDebit.Add(tx.Amount.Abs())
		default:
			return nil, fmt.Errorf("Calculate: transaction %d: %w: %q", i, ErrUnknownTransactionType, tx.Type)
		}

		running = running.Add(convention.Contribution(tx))
		row.Running = running
		l.Rows = append(l.Rows, row)
	}

	return l, nil
}
