// Package statement turns a validated statement request into a document
// definition and renders it.
package statement

import (
	"fmt"

	"github.com/dvloznov/statement-pdf/internal/document"
	"github.com/dvloznov/statement-pdf/internal/domain"
	"github.com/dvloznov/statement-pdf/internal/ledger"
	"github.com/shopspring/decimal"
)

// Options is the fixed template configuration of a statement.
type Options struct {
	Layout            ledger.Mode
	Convention        ledger.SignConvention
	OrganizationName  string
	LogoPath          string
	BrandingImagePath string
	SignaturePath     string
	FontFamily        string
}

// DefaultOptions returns the template defaults.
func DefaultOptions() Options {
	return Options{
		Layout:           ledger.RunningBalance,
		Convention:       ledger.SignedDebits,
		OrganizationName: "MSV Public School Rambha",
		LogoPath:         "./logo.jpg",
		SignaturePath:    "./logo.jpg",
		FontFamily:       "Roboto",
	}
}

const imageWidth = 50

// Builder assembles statement documents. It is safe for concurrent use.
type Builder struct {
	opts Options
}

// NewBuilder creates a Builder, filling unset options from DefaultOptions.
func NewBuilder(opts Options) *Builder {
	def := DefaultOptions()
	if opts.Layout == "" {
		opts.Layout = def.Layout
	}
	if opts.Convention == "" {
		opts.Convention = def.Convention
	}
	if opts.FontFamily == "" {
		opts.FontFamily = def.FontFamily
	}
	return &Builder{opts: opts}
}

// Options returns the builder configuration.
func (b *Builder) Options() Options {
	return b.opts
}

// Build validates the request, derives the ledger and assembles the document.
func (b *Builder) Build(req *domain.StatementRequest) (*document.Definition, *ledger.Ledger, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	l, err := ledger.Calculate(req.Transactions, b.opts.Convention)
	if err != nil {
		return nil, nil, fmt.Errorf("Build: %w", err)
	}

	def := &document.Definition{
		Title:        "Transactions for " + req.Person.Name,
		Styles:       styles(),
		DefaultStyle: document.Style{Font: b.opts.FontFamily, FontSize: 10},
	}

	def.Content = append(def.Content,
		b.header(),
		document.TextBlock{Text: "Transactions for " + req.Person.Name, Style: "header"},
		document.TextBlock{Text: "Mobile: " + req.Person.Mobile, Inline: document.Style{Margin: document.M(0, 0, 0, 20)}},
		b.table(l, *req.Balance),
	)
	def.Content = append(def.Content, b.closing(*req.Balance)...)

	return def, l, nil
}

func (b *Builder) header() document.Block {
	var logo document.Block
	if b.opts.LogoPath != "" {
		logo = document.ImageBlock{Path: b.opts.LogoPath, Width: imageWidth}
	}
	var branding document.Block
	if b.opts.BrandingImagePath != "" {
		branding = document.ImageBlock{Path: b.opts.BrandingImagePath, Width: imageWidth, Alignment: document.AlignRight}
	}
	return document.ColumnsBlock{
		Columns: []document.Block{
			logo,
			document.TextBlock{Text: b.opts.OrganizationName, Style: "orgName", Inline: document.Style{Alignment: document.AlignCenter}},
			branding,
		},
		Margin: document.M(0, 0, 0, 20),
	}
}

func (b *Builder) table(l *ledger.Ledger, balance domain.BalanceInfo) document.TableBlock {
	head := []document.Cell{
		{Text: "Date", Bold: true},
		{Text: "Description", Bold: true},
		{Text: "Credit", Bold: true},
		{Text: "Debit", Bold: true},
	}
	widths := []float64{20, 35, 20, 20}
	if b.opts.Layout == ledger.RunningBalance {
		head = append(head, document.Cell{Text: "Balance", Bold: true})
		widths = []float64{20, 30, 15, 15, 20}
	}

	body := make([][]document.Cell, 0, len(l.Rows)+3)
	body = append(body, head)
	for _, row := range l.Rows {
		cells := []document.Cell{
			{Text: row.Date},
			{Text: row.Description},
			{Text: row.Credit, Color: document.ColorPositive},
			{Text: row.Debit, Color: document.ColorNegative},
		}
		if b.opts.Layout == ledger.RunningBalance {
			cells = append(cells, document.Cell{Text: row.Running.StringFixed(2), Color: signColor(row.Running)})
		}
		body = append(body, cells)
	}

	if b.opts.Layout == ledger.Totals {
		body = append(body,
			[]document.Cell{
				{Text: "Total", Bold: true, ColSpan: 2},
				{},
				{Text: l.TotalCredit.StringFixed(2), Bold: true, Color: document.ColorPositive},
				{Text: l.TotalDebit.StringFixed(2), Bold: true, Color: document.ColorNegative},
			},
			[]document.Cell{
				{Text: "Closing Balance", Bold: true, ColSpan: 2},
				{},
				{Text: balance.Label(), Bold: true, Color: signColor(balance.CurrentBalance), ColSpan: 2},
				{},
			},
		)
	}

	return document.TableBlock{
		HeaderRows: 1,
		Widths:     widths,
		Body:       body,
		Margin:     document.M(0, 0, 0, 20),
	}
}

func (b *Builder) closing(balance domain.BalanceInfo) []document.Block {
	var blocks []document.Block
	if b.opts.Layout == ledger.RunningBalance {
		blocks = append(blocks, document.TextBlock{
			Text:   "Total Balance: " + balance.Label(),
			Style:  "total",
			Inline: document.Style{Color: signColor(balance.CurrentBalance)},
		})
	}
	if b.opts.SignaturePath != "" {
		blocks = append(blocks, document.ImageBlock{
			Path:      b.opts.SignaturePath,
			Width:     imageWidth,
			Alignment: document.AlignRight,
			Margin:    document.M(0, 50, 0, 0),
		})
	}
	blocks = append(blocks, document.TextBlock{Text: "Signature", Style: "signature"})
	return blocks
}

func signColor(v decimal.Decimal) document.Color {
	if v.IsNegative() {
		return document.ColorNegative
	}
	return document.ColorPositive
}

func styles() map[string]document.Style {
	return map[string]document.Style{
		"orgName": {
			FontSize: 16,
			Bold:     true,
			Margin:   document.M(0, 10, 0, 0),
		},
		"header": {
			FontSize:  18,
			Bold:      true,
			Alignment: document.AlignCenter,
			Margin:    document.M(0, 0, 0, 20),
		},
		"total": {
			FontSize:  14,
			Bold:      true,
			Alignment: document.AlignRight,
			Margin:    document.M(0, 20, 0, 0),
		},
		"signature": {
			FontSize:  12,
			Italics:   true,
			Alignment: document.AlignRight,
		},
	}
}
