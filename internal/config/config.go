package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CHALLAN_LOGGING_LEVEL.
const EnvPrefix = "CHALLAN"

// DateLayout is the layout of epoch dates and custom report windows.
const DateLayout = "2006-01-02"

// FileName is the config file looked up in the working directory.
const FileName = "challan.yaml"

// Config represents the challan.yaml configuration.
type Config struct {
	Epoch           string        `yaml:"epoch" envconfig:"EPOCH"`
	Extension       string        `yaml:"extension" envconfig:"EXTENSION"`
	MaxHeaderOffset int           `yaml:"max_header_offset" envconfig:"MAX_HEADER_OFFSET"`
	DateLayouts     []string      `yaml:"date_layouts" envconfig:"DATE_LAYOUTS"`
	Columns         ColumnsConfig `yaml:"columns" envconfig:"COLUMNS"`
	Output          OutputConfig  `yaml:"output" envconfig:"OUTPUT"`
	Logging         LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// ColumnsConfig names the source columns. Matching is exact.
type ColumnsConfig struct {
	PaymentDate string `yaml:"payment_date" envconfig:"PAYMENT_DATE"`
	ChallanDate string `yaml:"challan_date" envconfig:"CHALLAN_DATE"`
	Amount      string `yaml:"amount" envconfig:"AMOUNT"`
	Status      string `yaml:"status" envconfig:"STATUS"`
}

// OutputConfig controls where reports go and how they are named.
type OutputConfig struct {
	Dir          string `yaml:"dir" envconfig:"DIR"` // relative dirs resolve against the input directory
	Prefix       string `yaml:"prefix" envconfig:"PREFIX"`
	StatusPrefix string `yaml:"status_prefix" envconfig:"STATUS_PREFIX"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"` // "text" or "json"
}

// Default returns the configuration used when no challan.yaml exists.
func Default() *Config {
	return &Config{
		Epoch:           "2020-12-01",
		Extension:       ".csv",
		MaxHeaderOffset: 20,
		// Day-first: 05-01-2021 and 5/1/2021 are 5 January. Unpadded 1 and 2 also
		// accept zero-padded months and days.
		DateLayouts: []string{
			time.RFC3339,
			"2006-1-2 15:04:05",
			"2006-1-2T15:04:05",
			"2006-1-2 15:04",
			"2006-1-2",
			"2-1-2006 15:04:05",
			"2-1-2006 3:04:05 PM",
			"2-1-2006 15:04",
			"2-1-2006",
			"2/1/2006 15:04:05",
			"2/1/2006 3:04:05 PM",
			"2/1/2006 15:04",
			"2/1/2006",
			"2-Jan-2006",
			"2 Jan 2006",
			"2006/1/2",
		},
		Columns: ColumnsConfig{
			PaymentDate: "Payment Date",
			ChallanDate: "Challan Date",
			Amount:      "Challan Amount",
			Status:      "Challan Status",
		},
		Output: OutputConfig{
			Dir:          "Reports",
			Prefix:       "ANPR_payment_details",
			StatusPrefix: "ANPR_status_report",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a challan.yaml file from disk on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Resolve loads path when it exists (defaults otherwise), applies CHALLAN_* environment
// overrides and validates the result. An explicitly requested file must exist.
func Resolve(path string, explicit bool) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		switch {
		case err == nil:
			cfg = loaded
		case explicit || !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// EpochDate returns the parsed calendar epoch.
func (c *Config) EpochDate() (time.Time, error) {
	t, err := time.Parse(DateLayout, c.Epoch)
	if err != nil {
		return time.Time{}, Errorf("epoch %q is not a YYYY-MM-DD date", c.Epoch)
	}
	return t, nil
}

// Validate checks the configuration and returns a *Error describing every problem found.
func (c *Config) Validate() error {
	var problems []string
	if _, err := time.Parse(DateLayout, c.Epoch); err != nil {
		problems = append(problems, fmt.Sprintf("epoch %q is not a YYYY-MM-DD date", c.Epoch))
	}
	if c.Extension == "" {
		problems = append(problems, "extension must not be empty")
	}
	if c.MaxHeaderOffset < 0 {
		problems = append(problems, fmt.Sprintf("max_header_offset %d must not be negative", c.MaxHeaderOffset))
	}
	if len(c.DateLayouts) == 0 {
		problems = append(problems, "at least one date layout is required")
	}
	if c.Columns.PaymentDate == "" || c.Columns.ChallanDate == "" || c.Columns.Amount == "" || c.Columns.Status == "" {
		problems = append(problems, "column names must not be empty")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging format %q must be text or json", c.Logging.Format))
	}
	if len(problems) > 0 {
		return &Error{Msg: strings.Join(problems, "; ")}
	}
	return nil
}
