package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dvloznov/statement-pdf/internal/domain"
	"github.com/dvloznov/statement-pdf/internal/ledger"
)

const (
	defaultPreviewWidth = 100
	dateWidth           = 12
	amountWidth         = 12
	minDescWidth        = 16
)

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringP("file", "f", "", "Statement request JSON (- for stdin)")
	previewCmd.Flags().String("convention", "", "Debit sign convention: signed or magnitude")
	previewCmd.Flags().Int("width", 0, "Output width (default terminal width)")
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the statement ledger to the terminal",
	RunE:  runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	file, _ := cmd.Flags().GetString("file")
	req, err := readRequest(file, cmd.InOrStdin())
	if err != nil {
		return err
	}

	convention := cfg.StatementOptions().Convention
	if v, _ := cmd.Flags().GetString("convention"); v != "" {
		if convention, err = ledger.ParseSignConvention(v); err != nil {
			return err
		}
	}

	l, err := ledger.Calculate(req.Transactions, convention)
	if err != nil {
		return err
	}

	width, _ := cmd.Flags().GetInt("width")
	if width <= 0 {
		width = terminalWidth(cmd.OutOrStdout())
	}
	return writePreview(cmd.OutOrStdout(), req, l, width)
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultPreviewWidth
	}
	fd := int(f.Fd())
	if term.IsTerminal(fd) {
		if width, _, err := term.GetSize(fd); err == nil && width > 0 {
			return width
		}
	}
	return defaultPreviewWidth
}

// writePreview prints one line group per transaction. Descriptions wrap
// to the space left after the fixed columns.
func writePreview(w io.Writer, req *domain.StatementRequest, l *ledger.Ledger, width int) error {
	descWidth := width - dateWidth - 3*amountWidth - 4
	if descWidth < minDescWidth {
		descWidth = minDescWidth
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Transactions for %s\n", req.Person.Name)
	if req.Person.Mobile != "" {
		fmt.Fprintf(&b, "Mobile: %s\n", req.Person.Mobile)
	}
	b.WriteString("\n")

	writeRow(&b, descWidth, "Date", "Description", "Credit", "Debit", "Balance")
	b.WriteString(strings.Repeat("-", dateWidth+descWidth+3*amountWidth+4))
	b.WriteString("\n")

	for _, row := range l.Rows {
		writeRow(&b, descWidth, row.Date, row.Description, row.Credit, row.Debit, row.Running.StringFixed(2))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Total credit: %s\n", l.TotalCredit.StringFixed(2))
	fmt.Fprintf(&b, "Total debit:  %s\n", l.TotalDebit.StringFixed(2))
	fmt.Fprintf(&b, "Total Balance: %s\n", req.Balance.Label())

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRow(b *strings.Builder, descWidth int, date, desc, credit, debit, balance string) {
	lines := strings.Split(wordwrap.String(desc, descWidth), "\n")
	for i, line := range lines {
		if i == 0 {
			b.WriteString(pad(date, dateWidth))
		} else {
			b.WriteString(pad("", dateWidth))
		}
		b.WriteString(" ")
		b.WriteString(pad(line, descWidth))
		if i == 0 {
			b.WriteString(" " + padLeft(credit, amountWidth))
			b.WriteString(" " + padLeft(debit, amountWidth))
			b.WriteString(" " + padLeft(balance, amountWidth))
		}
		b.WriteString("\n")
	}
}

func pad(s string, width int) string {
	if n := ansi.PrintableRuneWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := ansi.PrintableRuneWidth(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
