package statement

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dvloznov/statement-pdf/internal/document"
	"github.com/dvloznov/statement-pdf/internal/domain"
	"github.com/dvloznov/statement-pdf/internal/ledger"
	"github.com/shopspring/decimal"
)

func exampleRequest() *domain.StatementRequest {
	return &domain.StatementRequest{
		Transactions: []domain.TransactionRecord{
			{Date: "2024-01-01", Description: "Deposit", Type: domain.TransactionCredit, Amount: decimal.NewFromInt(100)},
			{Date: "2024-01-02", Description: "Fee", Type: domain.TransactionDebit, Amount: decimal.NewFromInt(-20)},
		},
		Balance: &domain.BalanceInfo{CurrentBalance: decimal.NewFromInt(80), Currency: "USD"},
		Person:  domain.Person{Name: "Jane Doe", Mobile: "555-1234"},
	}
}

func cellTexts(row []document.Cell) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.Text
	}
	return out
}

func onlyTable(t *testing.T, def *document.Definition) document.TableBlock {
	t.Helper()
	tables := def.Tables()
	if len(tables) != 1 {
		t.Fatalf("len(Tables()) = %d, want 1", len(tables))
	}
	return tables[0]
}

func TestBuilder_RunningBalanceLayout(t *testing.T) {
	b := NewBuilder(DefaultOptions())

	def, l, err := b.Build(exampleRequest())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	tbl := onlyTable(t, def)
	if want := []float64{20, 30, 15, 15, 20}; !reflect.DeepEqual(tbl.Widths, want) {
		t.Errorf("Widths = %v, want %v", tbl.Widths, want)
	}
	if got, want := cellTexts(tbl.Body[0]), []string{"Date", "Description", "Credit", "Debit", "Balance"}; !reflect.DeepEqual(got, want) {
		t.Errorf("header = %v, want %v", got, want)
	}
	for _, c := range tbl.Body[0] {
		if !c.Bold {
			t.Errorf("header cell %q is not bold", c.Text)
		}
	}

	rows := tbl.BodyRows()
	if len(rows) != 2 || len(l.Rows) != 2 {
		t.Fatalf("rows = %d (ledger %d), want 2", len(rows), len(l.Rows))
	}
	if got, want := cellTexts(rows[0]), []string{"2024-01-01", "Deposit", "100.00", "", "100.00"}; !reflect.DeepEqual(got, want) {
		t.Errorf("row 0 = %v, want %v", got, want)
	}
	if got, want := cellTexts(rows[1]), []string{"2024-01-02", "Fee", "", "20.00", "80.00"}; !reflect.DeepEqual(got, want) {
		t.Errorf("row 1 = %v, want %v", got, want)
	}
	if rows[0][4].Color != document.ColorPositive {
		t.Errorf("running balance color = %q, want %q", rows[0][4].Color, document.ColorPositive)
	}

	texts := def.Texts()
	wantTexts := []string{
		"MSV Public School Rambha",
		"Transactions for Jane Doe",
		"Mobile: 555-1234",
		"Total Balance: 80.00 USD",
		"Signature",
	}
	if !reflect.DeepEqual(texts, wantTexts) {
		t.Errorf("Texts() = %v, want %v", texts, wantTexts)
	}

	if images := def.Images(); !reflect.DeepEqual(images, []string{"./logo.jpg", "./logo.jpg"}) {
		t.Errorf("Images() = %v", images)
	}
}

func TestBuilder_TotalsLayout(t *testing.T) {
	opts := DefaultOptions()
	opts.Layout = ledger.Totals
	opts.Convention = ledger.MagnitudeDebits
	opts.BrandingImagePath = "./brand.png"
	b := NewBuilder(opts)

	req := &domain.StatementRequest{
		Transactions: []domain.TransactionRecord{
			{Type: domain.TransactionCredit, Amount: decimal.NewFromInt(50)},
			{Type: domain.TransactionDebit, Amount: decimal.NewFromInt(30)},
		},
		Balance: &domain.BalanceInfo{CurrentBalance: decimal.NewFromInt(-5), Currency: "₹"},
	}

	def, l, err := b.Build(req)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if l.TotalCredit.StringFixed(2) != "50.00" || l.TotalDebit.StringFixed(2) != "30.00" {
		t.Errorf("totals = %s/%s, want 50.00/30.00", l.TotalCredit.StringFixed(2), l.TotalDebit.StringFixed(2))
	}

	tbl := onlyTable(t, def)
	if want := []float64{20, 35, 20, 20}; !reflect.DeepEqual(tbl.Widths, want) {
		t.Errorf("Widths = %v, want %v", tbl.Widths, want)
	}
	if len(tbl.Body[0]) != 4 {
		t.Errorf("header has %d columns, want 4", len(tbl.Body[0]))
	}

	rows := tbl.BodyRows()
	if len(rows) != len(req.Transactions)+2 {
		t.Fatalf("body rows = %d, want %d", len(rows), len(req.Transactions)+2)
	}
	total := rows[len(rows)-2]
	if got, want := cellTexts(total), []string{"Total", "", "50.00", "30.00"}; !reflect.DeepEqual(got, want) {
		t.Errorf("total row = %v, want %v", got, want)
	}
	if total[0].ColSpan != 2 {
		t.Errorf("total label ColSpan = %d, want 2", total[0].ColSpan)
	}
	closing := rows[len(rows)-1]
	if closing[2].Text != "-5.00 ₹" || closing[2].Color != document.ColorNegative {
		t.Errorf("closing balance cell = %+v", closing[2])
	}

	for _, text := range def.Texts() {
		if text == "Total Balance: -5.00 ₹" {
			t.Error("totals layout must not render the running-balance summary line")
		}
	}
	if images := def.Images(); !reflect.DeepEqual(images, []string{"./logo.jpg", "./brand.png", "./logo.jpg"}) {
		t.Errorf("Images() = %v", images)
	}
}

func TestBuilder_RowCountMatchesInput(t *testing.T) {
	for _, layout := range []ledger.Mode{ledger.RunningBalance, ledger.Totals} {
		for _, n := range []int{0, 1, 17} {
			req := exampleRequest()
			req.Transactions = make([]domain.TransactionRecord, 0, n)
			for i := 0; i < n; i++ {
				req.Transactions = append(req.Transactions, domain.TransactionRecord{
					Date:        "d",
					Description: string(rune('a' + i%26)),
					Type:        domain.TransactionCredit,
					Amount:      decimal.NewFromInt(int64(i)),
				})
			}

			opts := DefaultOptions()
			opts.Layout = layout
			def, _, err := NewBuilder(opts).Build(req)
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}

			rows := onlyTable(t, def).BodyRows()
			extra := 0
			if layout == ledger.Totals {
				extra = 2
			}
			if len(rows) != n+extra {
				t.Errorf("%s with %d transactions: %d body rows, want %d", layout, n, len(rows), n+extra)
			}
			for i := 0; i < n; i++ {
				if rows[i][1].Text != req.Transactions[i].Description {
					t.Errorf("%s row %d out of order: %q", layout, i, rows[i][1].Text)
				}
			}
		}
	}
}

func TestBuilder_Idempotent(t *testing.T) {
	b := NewBuilder(DefaultOptions())
	first, _, err := b.Build(exampleRequest())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	second, _, err := b.Build(exampleRequest())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical requests produced different documents")
	}
}

func TestBuilder_Errors(t *testing.T) {
	b := NewBuilder(DefaultOptions())

	missing := exampleRequest()
	missing.Balance = nil
	if _, _, err := b.Build(missing); !errors.Is(err, domain.ErrMissingData) {
		t.Errorf("Build error = %v, want ErrMissingData", err)
	}

	badType := exampleRequest()
	badType.Transactions[0].Type = "transfer"
	if _, _, err := b.Build(badType); !errors.Is(err, ledger.ErrUnknownTransactionType) {
		t.Errorf("Build error = %v, want ErrUnknownTransactionType", err)
	}
}

func TestBuilder_OmitsUnsetImages(t *testing.T) {
	b := NewBuilder(Options{OrganizationName: "Org"})
	def, _, err := b.Build(exampleRequest())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if images := def.Images(); len(images) != 0 {
		t.Errorf("Images() = %v, want none", images)
	}
	if def.DefaultStyle.Font != "Roboto" {
		t.Errorf("DefaultStyle.Font = %q, want Roboto", def.DefaultStyle.Font)
	}
}
