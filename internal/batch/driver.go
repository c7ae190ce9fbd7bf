// Package batch drives a run over a directory of exports: ingest each file in turn,
// fold the records into one calendar table and emit the requested reports.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/challan-dev/challan/internal/aggregate"
	"github.com/challan-dev/challan/internal/config"
	"github.com/challan-dev/challan/internal/ingest"
	"github.com/challan-dev/challan/internal/logging"
	"github.com/challan-dev/challan/internal/model"
	"github.com/challan-dev/challan/internal/report"
	"github.com/challan-dev/challan/internal/rollup"
	"github.com/challan-dev/challan/internal/status"
)

// State is the lifecycle of a Driver.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// ErrAlreadyStarted is returned when Run is called on a driver that has already run.
var ErrAlreadyStarted = errors.New("batch: driver already started")

// FileOutcome records what happened to one input file.
type FileOutcome struct {
	Name       string
	Skipped    bool
	Reason     string // why the file was skipped
	Offset     int    // header offset
	Records    int    // records folded into the table
	BadDates   int
	BadAmounts int
	OutOfRange int
}

// ReportOutcome records one report emission.
type ReportOutcome struct {
	Kind report.Kind
	Path string
	Err  error
}

// Result is the outcome of a batch run.
type Result struct {
	RunID    string
	State    State
	Table    *aggregate.Table // the payment table, nil for status runs
	Status   []status.Row     // status rows, nil for payment runs
	Files    []FileOutcome
	Reports  []ReportOutcome // written reports
	Failures []ReportOutcome // reports that could not be written
}

// Err joins every report failure, or returns nil.
func (r *Result) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

// Driver runs one batch. Cancel may be called from any goroutine.
type Driver struct {
	cfg      *config.Config
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
	newID    func() string

	state     atomic.Int32
	cancelled atomic.Bool
	runID     string
	progress  func() float64
}

// Option configures a Driver.
type Option func(*Driver)

// WithObserver sets the receiver of progress and log events.
func WithObserver(o Observer) Option {
	return func(d *Driver) { d.observer = o }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithClock sets the source of "today", the last date of the calendar table.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// New creates an idle Driver.
func New(cfg *config.Config, opts ...Option) *Driver {
	d := &Driver{
		cfg:      cfg,
		logger:   logging.Discard(),
		observer: nopObserver{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.WithComponent(d.logger, "batch")
	return d
}

// State returns the current lifecycle state.
func (d *Driver) State() State { return State(d.state.Load()) }

// Cancel asks the batch to stop at the next file boundary. It is idempotent.
func (d *Driver) Cancel() { d.cancelled.Store(true) }

func (d *Driver) stopped(ctx context.Context) bool {
	return d.cancelled.Load() || ctx.Err() != nil
}

// Run validates req, folds every matching file in req.Dir into a fresh calendar table
// and writes the requested reports. Validation problems are returned as *config.Error
// before any file is read. Cancellation is not an error: the result's state is
// StateCancelled and no further reports are written.
func (d *Driver) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	epoch, err := d.cfg.EpochDate()
	if err != nil {
		return nil, err
	}
	table, err := aggregate.NewTable(epoch, d.now())
	if err != nil {
		return nil, err
	}
	res, err := d.start()
	if err != nil {
		return nil, err
	}
	res.Table = table

	files, err := ingest.Scan(req.Dir, d.cfg.Extension)
	if err != nil {
		return d.fail(res, err)
	}

	schema := ingest.PaymentSchema(d.cfg.Columns)
	cancelled := d.eachFile(ctx, res, files, schema, func(out *FileOutcome, parsed *ingest.Result) {
		for _, rec := range parsed.Records {
			if table.Add(rec) {
				out.Records++
			} else {
				out.OutOfRange++
			}
		}
		if out.OutOfRange > 0 {
			d.emit(Event{Kind: EventFileAnomaly, File: out.Name, Reason: ReasonOutOfRange, Count: out.OutOfRange,
				Message: fmt.Sprintf("%d records in %s fall outside %s to %s and will be ignored.", out.OutOfRange, out.Name,
					table.Start().Format(config.DateLayout), table.End().Format(config.DateLayout))})
		}
	})
	if cancelled {
		return d.cancel(res), nil
	}

	outDir := d.outDir(req.Dir, req.OutDir)
	namer := report.NamerFromConfig(d.cfg)
	rows := table.Rows()
	if len(files) > 0 && rollup.Total(rows).IsZero() {
		d.logger.Warn("no payment records were aggregated", slog.Int("files", len(files)))
	}

	type job struct {
		kind      report.Kind
		sheet     string
		keyHeader string
		rows      func() []model.Row
	}
	var jobs []job
	if req.Daily {
		jobs = append(jobs, job{report.KindDaily, "Daily", "Date", func() []model.Row {
			return rollup.WithTotal(rows)
		}})
	}
	if req.Monthly {
		jobs = append(jobs, job{report.KindMonthly, "Monthly", "Month", func() []model.Row {
			return rollup.WithTotal(rollup.Monthly(rows))
		}})
	}
	var window report.Window
	if w := req.Window; w != nil {
		_, startIn := table.Lookup(w.Start)
		_, endIn := table.Lookup(w.End)
		if !startIn || !endIn {
			d.logger.Warn("custom range extends beyond the calendar table",
				slog.String("start", w.raw.Start), slog.String("end", w.raw.End),
				slog.String("table_start", table.Start().Format(config.DateLayout)),
				slog.String("table_end", table.End().Format(config.DateLayout)))
		}
		window = w.raw
		jobs = append(jobs, job{report.KindCustom, "Custom Range", "Date", func() []model.Row {
			return rollup.WithTotal(rollup.Range(rows, w.Start, w.End))
		}})
	}

	for _, j := range jobs {
		if d.stopped(ctx) {
			return d.cancel(res), nil
		}
		path := filepath.Join(outDir, namer.FileName(j.kind, window))
		d.record(res, j.kind, path, report.WriteFlat(path, j.sheet, j.keyHeader, j.rows()))
	}
	return d.finish(res), nil
}

// RunStatus builds the collected-versus-pending report from a single export or from
// every export in a directory.
func (d *Driver) RunStatus(ctx context.Context, req StatusRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	res, err := d.start()
	if err != nil {
		return nil, err
	}

	files, baseDir, err := d.statusInputs(req.Path)
	if err != nil {
		return d.fail(res, err)
	}

	var records []model.Record
	schema := ingest.StatusSchema(d.cfg.Columns)
	cancelled := d.eachFile(ctx, res, files, schema, func(out *FileOutcome, parsed *ingest.Result) {
		records = append(records, parsed.Records...)
		out.Records = len(parsed.Records)
	})
	if cancelled {
		return d.cancel(res), nil
	}

	granularity, kind, keyHeader := status.Daily, report.KindStatusDaily, "Date"
	if req.Monthly {
		granularity, kind, keyHeader = status.Monthly, report.KindStatusMonthly, "Month"
	}
	res.Status = status.Build(records, granularity, req.Window.statusWindow())

	path := filepath.Join(d.outDir(baseDir, req.OutDir), report.NamerFromConfig(d.cfg).FileName(kind, report.Window{}))
	d.record(res, kind, path, report.WriteSectioned(path, keyHeader, res.Status, status.Total(res.Status)))
	return d.finish(res), nil
}

func (d *Driver) statusInputs(path string) ([]ingest.FileInfo, string, error) {
	if err := validateDir(path); err == nil {
		files, err := ingest.Scan(path, d.cfg.Extension)
		return files, path, err
	}
	return []ingest.FileInfo{{Name: filepath.Base(path), Path: path}}, filepath.Dir(path), nil
}

// eachFile ingests files sequentially, calling fold for every readable one. It checks
// for cancellation before each file and once after the last, and reports whether the
// batch was cancelled.
func (d *Driver) eachFile(ctx context.Context, res *Result, files []ingest.FileInfo, schema ingest.Schema,
	fold func(*FileOutcome, *ingest.Result)) bool {
	opts := ingest.OptionsFromConfig(d.cfg)
	done := 0
	d.progress = func() float64 {
		if len(files) == 0 {
			return 100
		}
		return float64(done) / float64(len(files)) * 100
	}

	for _, fi := range files {
		if d.stopped(ctx) {
			return true
		}
		d.emit(Event{Kind: EventFileStarted, File: fi.Name, Message: "Processing file: " + fi.Name})

		out := FileOutcome{Name: fi.Name}
		parsed, err := ingest.ParseFile(fi.Path, schema, opts)
		if err != nil {
			out.Skipped = true
			out.Reason = err.Error()
			msg := fmt.Sprintf("Could not read %s: %v. Skipping this file.", fi.Name, err)
			var fe *ingest.FormatError
			if errors.As(err, &fe) {
				msg = fmt.Sprintf("Valid header not found in %s. Skipping this file.", fi.Name)
			}
			d.emit(Event{Kind: EventFileSkipped, File: fi.Name, Reason: out.Reason, Message: msg})
		} else {
			out.Offset, out.BadDates, out.BadAmounts = parsed.Offset, parsed.BadDates, parsed.BadAmounts
			if parsed.HasAnomalies() {
				d.emitDropped(fi.Name, parsed)
			}
			fold(&out, parsed)
			d.emit(Event{Kind: EventFileCompleted, File: fi.Name, Count: out.Records,
				Message: "Done processing file: " + fi.Name})
		}
		res.Files = append(res.Files, out)
		done++
		d.emit(Event{Kind: EventProgress, Progress: d.progress()})
	}
	return d.stopped(ctx)
}

func (d *Driver) emitDropped(name string, parsed *ingest.Result) {
	if parsed.BadDates > 0 {
		d.emit(Event{Kind: EventFileAnomaly, File: name, Reason: ReasonBadDate, Count: parsed.BadDates,
			Message: fmt.Sprintf("Some dates in %s could not be converted and will be ignored.", name)})
	}
	if parsed.BadAmounts > 0 {
		d.emit(Event{Kind: EventFileAnomaly, File: name, Reason: ReasonBadAmount, Count: parsed.BadAmounts,
			Message: fmt.Sprintf("Some amounts in %s could not be converted and will be ignored.", name)})
	}
}

func (d *Driver) outDir(inputDir, override string) string {
	if override != "" {
		return override
	}
	if filepath.IsAbs(d.cfg.Output.Dir) {
		return d.cfg.Output.Dir
	}
	return filepath.Join(inputDir, d.cfg.Output.Dir)
}

func (d *Driver) start() (*Result, error) {
	if !d.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil, ErrAlreadyStarted
	}
	d.runID = d.newID()
	d.progress = func() float64 { return 0 }
	d.emit(Event{Kind: EventStarted, Message: "Processing started"})
	return &Result{RunID: d.runID, State: StateRunning}, nil
}

func (d *Driver) record(res *Result, kind report.Kind, path string, err error) {
	out := ReportOutcome{Kind: kind, Path: path, Err: err}
	if err != nil {
		res.Failures = append(res.Failures, out)
		d.emit(Event{Kind: EventReportFailed, Report: kind, Path: path, Message: err.Error()})
		return
	}
	res.Reports = append(res.Reports, out)
	d.emit(Event{Kind: EventReportWritten, Report: kind, Path: path,
		Message: fmt.Sprintf("%s report saved to %s", kind, path)})
}

func (d *Driver) finish(res *Result) *Result {
	res.State = StateCompleted
	if len(res.Reports) == 0 && len(res.Failures) > 0 {
		res.State = StateFailed
	}
	return d.settle(res)
}

func (d *Driver) cancel(res *Result) *Result {
	d.emit(Event{Kind: EventCancelled, Message: "Processing canceled."})
	res.State = StateCancelled
	return d.settle(res)
}

func (d *Driver) fail(res *Result, err error) (*Result, error) {
	res.State = StateFailed
	d.settle(res)
	return res, err
}

func (d *Driver) settle(res *Result) *Result {
	d.state.Store(int32(res.State))
	d.emit(Event{Kind: EventFinished, Progress: d.progress(), Message: res.State.String()})
	return res
}

func (d *Driver) emit(ev Event) {
	ev.Time = d.now()
	ev.RunID = d.runID

	attrs := []any{slog.String("event", string(ev.Kind)), slog.String("run_id", ev.RunID)}
	if ev.File != "" {
		attrs = append(attrs, slog.String("file", ev.File))
	}
	if ev.Report != "" {
		attrs = append(attrs, slog.String("report", string(ev.Report)))
	}
	if ev.Count > 0 {
		attrs = append(attrs, slog.Int("count", ev.Count))
	}
	switch ev.Kind {
	case EventFileSkipped, EventFileAnomaly, EventReportFailed:
		d.logger.Warn(ev.Message, attrs...)
	case EventProgress:
		d.logger.Debug("progress", append(attrs, slog.Float64("percent", ev.Progress))...)
	default:
		d.logger.Info(ev.Message, attrs...)
	}
	d.observer.Observe(ev)
}
