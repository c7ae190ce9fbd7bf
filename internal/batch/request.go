package batch

import (
	"os"
	"time"

	"github.com/challan-dev/challan/internal/config"
	"github.com/challan-dev/challan/internal/report"
	"github.com/challan-dev/challan/internal/status"
)

// Window is a validated inclusive custom date range.
type Window struct {
	Start, End time.Time
	raw        report.Window
}

// ParseWindow parses YYYY-MM-DD bounds. Malformed dates or start after end are
// configuration errors.
func ParseWindow(start, end string) (*Window, error) {
	s, err := time.Parse(config.DateLayout, start)
	if err != nil {
		return nil, config.Errorf("invalid start date %q: use YYYY-MM-DD", start)
	}
	e, err := time.Parse(config.DateLayout, end)
	if err != nil {
		return nil, config.Errorf("invalid end date %q: use YYYY-MM-DD", end)
	}
	if s.After(e) {
		return nil, config.Errorf("start date %s is after end date %s", start, end)
	}
	return &Window{Start: s, End: e, raw: report.Window{Start: start, End: end}}, nil
}

func (w *Window) statusWindow() *status.Window {
	if w == nil {
		return nil
	}
	return &status.Window{Start: w.Start, End: w.End}
}

// Request selects the input directory and the reports of one batch.
type Request struct {
	Dir     string
	OutDir  string // empty means <Dir>/<output.dir>
	Daily   bool
	Monthly bool
	Window  *Window // custom-range report when set
}

// Validate checks the request before any file is read.
func (r Request) Validate() error {
	if err := validateDir(r.Dir); err != nil {
		return err
	}
	if !r.Daily && !r.Monthly && r.Window == nil {
		return config.Errorf("no report selected: choose daily, monthly or a custom date range")
	}
	return nil
}

// StatusRequest selects the inputs of a collected-versus-pending report.
// Path may be a single file or a directory of exports.
type StatusRequest struct {
	Path    string
	OutDir  string
	Monthly bool
	Window  *Window
}

// Validate checks the request before any file is read.
func (r StatusRequest) Validate() error {
	if r.Path == "" {
		return config.Errorf("no input selected")
	}
	if _, err := os.Stat(r.Path); err != nil {
		return config.Errorf("input %s: %v", r.Path, err)
	}
	return nil
}

func validateDir(dir string) error {
	if dir == "" {
		return config.Errorf("no directory selected")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return config.Errorf("directory %s: %v", dir, err)
	}
	if !info.IsDir() {
		return config.Errorf("%s is not a directory", dir)
	}
	return nil
}
