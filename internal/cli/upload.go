package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dvloznov/statement-pdf/internal/store"
)

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket name (or set GCS_BUCKET env)")
	uploadCmd.Flags().String("prefix", "", "Object prefix inside the bucket")
	uploadCmd.Flags().String("file", "", "Local PDF to upload")
	uploadCmd.Flags().String("object", "", "Object name (default: file base name)")
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a generated PDF to Cloud Storage",
	RunE:  runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	bucket, _ := cmd.Flags().GetString("bucket")
	prefix, _ := cmd.Flags().GetString("prefix")
	file, _ := cmd.Flags().GetString("file")
	object, _ := cmd.Flags().GetString("object")

	if bucket == "" || file == "" {
		return fmt.Errorf("--bucket and --file are required")
	}
	if object == "" {
		object = filepath.Base(file)
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open file %q: %w", file, err)
	}
	defer f.Close()

	ctx := commandContext(cmd)
	g, err := store.NewGCS(ctx, bucket, prefix)
	if err != nil {
		return err
	}
	defer g.Close()

	start := time.Now()
	if err := g.Save(ctx, object, f); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded gs://%s/%s in %s\n", bucket, g.ObjectName(object), time.Since(start).Round(time.Millisecond))
	return nil
}
