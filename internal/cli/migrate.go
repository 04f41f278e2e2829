package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvloznov/statement-pdf/internal/audit"
)

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().String("project", "", "GCP project ID (default from config)")
	migrateCmd.Flags().String("dataset", "", "BigQuery dataset ID (default from config)")
	migrateCmd.Flags().String("table", "", "Audit table name (default from config)")
	migrateCmd.Flags().Bool("dry-run", false, "Print the DDL instead of running it")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the BigQuery audit table if it doesn't exist",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	project, _ := cmd.Flags().GetString("project")
	dataset, _ := cmd.Flags().GetString("dataset")
	table, _ := cmd.Flags().GetString("table")
	if project == "" {
		project = cfg.Audit.ProjectID
	}
	if dataset == "" {
		dataset = cfg.Audit.Dataset
	}
	if table == "" {
		table = cfg.Audit.Table
	}

	ctx := commandContext(cmd)
	bq, err := audit.NewBigQuery(ctx, project, dataset, table)
	if err != nil {
		return err
	}
	defer bq.Close()

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), bq.CreateTableSQL())
		return nil
	}

	if err := bq.EnsureTable(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Audit table %s.%s.%s is ready\n", project, dataset, table)
	return nil
}
