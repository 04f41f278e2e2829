// Package cli implements the statement command line tool.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvloznov/statement-pdf/internal/config"
	"github.com/dvloznov/statement-pdf/internal/domain"
	"github.com/dvloznov/statement-pdf/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "statement",
	Short: "Render and inspect transaction statements",
	Long: `Render transaction statement PDFs from the same JSON payload the
HTTP service accepts, preview the computed ledger in the terminal, or
upload a generated file to Cloud Storage.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "TOML config file (or set STATEMENT_CONFIG env)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	level, _ := cmd.Flags().GetString("log-level")
	log, err := logger.NewWithConfig(level, logger.FormatConsole, cmd.ErrOrStderr())
	if err != nil {
		log = logger.NewWithWriter(io.Discard)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.WithContext(ctx, log)
}

// readRequest decodes a statement request from path, or stdin for "-".
func readRequest(path string, stdin io.Reader) (*domain.StatementRequest, error) {
	if path == "" {
		return nil, fmt.Errorf("request file required: -f <file.json>")
	}

	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open request: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req domain.StatementRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBody, err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}
