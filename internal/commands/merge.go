package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/challan-dev/challan/internal/ingest"
	"github.com/challan-dev/challan/internal/merge"
)

func newMergeCommand(root *rootOptions) *cobra.Command {
	var output string
	var statusExport bool

	cmd := &cobra.Command{
		Use:   "merge [directory]",
		Short: "Concatenate every export in a directory into one CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(args)
			if err != nil {
				return err
			}
			cfg, logger, err := root.load(cmd)
			if err != nil {
				return err
			}
			out, err := filepath.Abs(output)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			files, err := ingest.Scan(dir, cfg.Extension)
			if err != nil {
				return err
			}
			inputs := files[:0]
			for _, fi := range files {
				if fi.Path != out {
					inputs = append(inputs, fi)
				}
			}

			schema := ingest.PaymentSchema(cfg.Columns)
			if statusExport {
				schema = ingest.StatusSchema(cfg.Columns)
			}
			res, err := merge.MergeFile(out, inputs, schema.Required(), cfg.MaxHeaderOffset)
			if err != nil {
				return err
			}

			for _, skip := range res.Skipped {
				logger.Warn("Skipping file", slog.String("file", skip.File), slog.String("reason", skip.Reason))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "CSV files merged successfully into %s (%d rows from %d files)\n",
				out, res.Rows, len(res.Merged))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", merge.DefaultOutput, "merged CSV file")
	cmd.Flags().BoolVar(&statusExport, "status", false, "detect headers of challan status exports")

	return cmd
}
