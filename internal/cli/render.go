package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvloznov/statement-pdf/internal/ledger"
	"github.com/dvloznov/statement-pdf/internal/render"
	"github.com/dvloznov/statement-pdf/internal/statement"
	"github.com/dvloznov/statement-pdf/internal/store"
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("file", "f", "", "Statement request JSON (- for stdin)")
	renderCmd.Flags().StringP("output", "o", "", "Output PDF path (default <name>_transactions.pdf)")
	renderCmd.Flags().String("layout", "", "Table layout: running-balance or totals")
	renderCmd.Flags().String("convention", "", "Debit sign convention: signed or magnitude")
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a statement PDF locally",
	Long: `Render a statement request to a PDF file using the configured fonts,
images and layout. Flags override the configuration file.`,
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	file, _ := cmd.Flags().GetString("file")
	req, err := readRequest(file, cmd.InOrStdin())
	if err != nil {
		return err
	}

	opts := cfg.StatementOptions()
	if v, _ := cmd.Flags().GetString("layout"); v != "" {
		if opts.Layout, err = ledger.ParseMode(v); err != nil {
			return err
		}
	}
	if v, _ := cmd.Flags().GetString("convention"); v != "" {
		if opts.Convention, err = ledger.ParseSignConvention(v); err != nil {
			return err
		}
	}

	renderer, err := render.NewFPDF(cfg.RenderConfig())
	if err != nil {
		return err
	}
	svc := statement.NewService(statement.NewBuilder(opts), renderer)

	out, err := svc.Generate(commandContext(cmd), req)
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = store.StatementFileName(req.Person.Name)
	}
	if err := os.WriteFile(path, out.PDF, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d rows, %d bytes)\n", path, len(out.Ledger.Rows), len(out.PDF))
	return nil
}
