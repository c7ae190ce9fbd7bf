package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/challan-dev/challan/internal/batch"
)

func newReportCommand(root *rootOptions) *cobra.Command {
	var (
		daily, monthly bool
		start, end     string
		outDir         string
		metricsFile    string
	)

	cmd := &cobra.Command{
		Use:   "report [directory]",
		Short: "Build daily, monthly and custom-range payment reports from a directory of exports",
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
			window, err := parseWindow(start, end)
			if err != nil {
				return err
			}

			req := batch.Request{Dir: dir, OutDir: outDir, Daily: daily, Monthly: monthly, Window: window}
			return execute(cmd, cfg, logger, metricsFile, func(ctx context.Context, d *batch.Driver) (*batch.Result, error) {
				return d.Run(ctx, req)
			})
		},
	}

	cmd.Flags().BoolVar(&daily, "daily", false, "write the daily report")
	cmd.Flags().BoolVar(&monthly, "monthly", false, "write the monthly report")
	cmd.Flags().StringVar(&start, "start", "", "custom range start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "custom range end date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default <directory>/Reports)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write batch metrics in Prometheus text format")
	cmd.MarkFlagsRequiredTogether("start", "end")

	return cmd
}
