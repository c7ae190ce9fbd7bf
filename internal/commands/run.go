package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/challan-dev/challan/internal/batch"
	"github.com/challan-dev/challan/internal/config"
	"github.com/challan-dev/challan/internal/metrics"
	"github.com/challan-dev/challan/internal/runlog"
)

type runFunc func(ctx context.Context, d *batch.Driver) (*batch.Result, error)

// execute runs a batch on its own goroutine while this one drains its events into the
// run log and metrics. An interrupt cancels the batch at the next file boundary.
func execute(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, metricsFile string, run runFunc) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := make(chan batch.Event, 16)
	driver := batch.New(cfg, batch.WithLogger(logger), batch.WithObserver(batch.ChannelObserver(events)))
	recorder := metrics.New()

	var (
		res     *batch.Result
		entries []runlog.Entry
	)
	var g errgroup.Group
	g.Go(func() error {
		defer close(events)
		var err error
		res, err = run(ctx, driver)
		return err
	})
	g.Go(func() error {
		for ev := range events {
			recorder.Observe(ev)
			if runlog.Loggable(ev) {
				entries = append(entries, runlog.FromEvent(ev))
			}
		}
		return nil
	})
	runErr := g.Wait()

	if metricsFile != "" && res != nil {
		if err := recorder.WriteTextfile(metricsFile); err != nil {
			logger.Warn("writing metrics", slog.String("path", metricsFile), slog.Any("error", err))
		}
	}
	if runErr != nil {
		return runErr
	}
	return summarize(cmd, res, entries, logger)
}

func summarize(cmd *cobra.Command, res *batch.Result, entries []runlog.Entry, logger *slog.Logger) error {
	out := cmd.OutOrStdout()

	switch res.State {
	case batch.StateCancelled:
		fmt.Fprintln(out, "Processing canceled.")
		return nil
	case batch.StateFailed:
		return fmt.Errorf("no report could be written: %w", res.Err())
	}

	skipped := 0
	for _, f := range res.Files {
		if f.Skipped {
			skipped++
		}
	}
	fmt.Fprintf(out, "Processed %d files (%d skipped)\n", len(res.Files), skipped)

	for _, r := range res.Reports {
		fmt.Fprintf(out, "  %s\n", r.Path)
	}
	if len(res.Reports) > 0 {
		dir := filepath.Dir(res.Reports[0].Path)
		if err := runlog.Append(dir, entries); err != nil {
			logger.Warn("writing run log", slog.String("dir", dir), slog.Any("error", err))
		}
		fmt.Fprintf(out, "Reports generated in %s\n", dir)
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("%d of %d reports failed: %w", len(res.Failures), len(res.Failures)+len(res.Reports), err)
	}
	return nil
}

func resolveDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

func parseWindow(start, end string) (*batch.Window, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	return batch.ParseWindow(start, end)
}
