package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrMissingData is returned when a statement request lacks transactions or balance.
	ErrMissingData = errors.New("missing required data")

	// ErrInvalidBody is returned when a statement request body cannot be decoded.
	ErrInvalidBody = errors.New("invalid request body")
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	// TransactionCredit is money received.
	TransactionCredit TransactionType = "credit"
	// TransactionDebit is money spent.
	TransactionDebit TransactionType = "debit"
)

// TransactionRecord is one line of a statement as supplied by the caller.
// Date is an opaque display string and is never parsed.
type TransactionRecord struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
}

// Person identifies the statement holder.
type Person struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

// BalanceInfo is the final account balance after all transactions.
type BalanceInfo struct {
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Currency       string          `json:"currency"`
}

// Label formats the balance for display, e.g. "80.00 USD".
func (b BalanceInfo) Label() string {
	if b.Currency == "" {
		return b.CurrentBalance.StringFixed(2)
	}
	return b.CurrentBalance.StringFixed(2) + " " + b.Currency
}

// StatementRequest is the top-level payload accepted by the statement endpoints.
// Transactions keeps input order: it is the display order and the order in
// which running balances accumulate. A JSON null or absent "transactions" key
// leaves the slice nil, while [] yields an empty non-nil slice.
type StatementRequest struct {
	Transactions []TransactionRecord `json:"transactions"`
	Balance      *BalanceInfo        `json:"balance"`
	Person       Person              `json:"person"`
}

// Validate performs presence checks only. An empty transaction list is
// accepted and renders a header-only table.
func (r *StatementRequest) Validate() error {
	if r == nil || r.Transactions == nil || r.Balance == nil {
		return ErrMissingData
	}
	return nil
}
