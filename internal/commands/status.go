package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/challan-dev/challan/internal/batch"
)

func newStatusCommand(root *rootOptions) *cobra.Command {
	var (
		monthly     bool
		start, end  string
		outDir      string
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "status <file|directory>",
		Short: "Build the collected-versus-pending report from challan exports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveDir(args)
			if err != nil {
				return err
			}
			cfg, logger, err := root.load(cmd)
			if err != nil {
				return err
			}
			window, err := parseWindow(start, end)
			if err != nil {
				return err
			}

			req := batch.StatusRequest{Path: path, OutDir: outDir, Monthly: monthly, Window: window}
			return execute(cmd, cfg, logger, metricsFile, func(ctx context.Context, d *batch.Driver) (*batch.Result, error) {
				return d.RunStatus(ctx, req)
			})
		},
	}

	cmd.Flags().BoolVar(&monthly, "monthly", false, "group by month instead of by date")
	cmd.Flags().StringVar(&start, "start", "", "only include challans on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "only include challans on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default Reports next to the input)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write batch metrics in Prometheus text format")
	cmd.MarkFlagsRequiredTogether("start", "end")

	return cmd
}
