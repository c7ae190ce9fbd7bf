package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/challan-dev/challan/internal/buildinfo"
	"github.com/challan-dev/challan/internal/config"
	"github.com/challan-dev/challan/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:     "challan",
		Short:   "Daily, monthly and status reports from challan payment exports",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.FileName, "config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")

	rootCmd.AddCommand(
		newInitCommand(),
		newReportCommand(opts),
		newStatusCommand(opts),
		newMergeCommand(opts),
		newLogCommand(),
	)

	return rootCmd
}

// load resolves the configuration and builds the logger for a subcommand.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Resolve(o.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("configuring logger: %w", err)
	}
	return cfg, logger, nil
}
