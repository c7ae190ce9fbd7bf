package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/challan-dev/challan/internal/runlog"
)

func newLogCommand() *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "log [report-directory]",
		Short: "Show the processing log written next to the reports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(args)
			if err != nil {
				return err
			}
			entries, err := runlog.Read(dir)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no %s in %s", runlog.FileName, dir)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range entries {
				if runID != "" && e.RunID != runID {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format(time.DateTime), e.Event, e.File, e.Message)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "only show entries of this run ID")

	return cmd
}
