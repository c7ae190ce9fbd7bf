// Package runlog persists the per-file log of a batch as processing-log.csv next to
// the reports it produced.
package runlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/challan-dev/challan/internal/batch"
)

// FileName is the log file written into the report directory.
const FileName = "processing-log.csv"

// Header is the CSV header row.
var Header = []string{"timestamp", "run_id", "event", "file", "count", "message"}

// Entry is one logged batch event.
type Entry struct {
	Timestamp time.Time
	RunID     string
	Event     batch.EventKind
	File      string
	Count     int
	Message   string
}

// FromEvent converts a batch event into a log entry.
func FromEvent(ev batch.Event) Entry {
	return Entry{
		Timestamp: ev.Time,
		RunID:     ev.RunID,
		Event:     ev.Kind,
		File:      ev.File,
		Count:     ev.Count,
		Message:   ev.Message,
	}
}

// Loggable reports whether ev belongs in the run log. Progress ticks are left out.
func Loggable(ev batch.Event) bool {
	return ev.Kind != batch.EventProgress && ev.Message != ""
}

func marshal(e Entry) []string {
	return []string{
		e.Timestamp.UTC().Format(time.RFC3339),
		e.RunID,
		string(e.Event),
		e.File,
		strconv.Itoa(e.Count),
		e.Message,
	}
}

func unmarshal(rec []string) (Entry, error) {
	if len(rec) != len(Header) {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(rec))
	}
	ts, err := time.Parse(time.RFC3339, rec[0])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", rec[0], err)
	}
	count, err := strconv.Atoi(rec[4])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing count %q: %w", rec[4], err)
	}
	return Entry{
		Timestamp: ts,
		RunID:     rec[1],
		Event:     batch.EventKind(rec[2]),
		File:      rec[3],
		Count:     count,
		Message:   rec[5],
	}, nil
}

// Append writes entries to <dir>/processing-log.csv, creating the directory, file and
// header as needed. Later runs append below earlier ones.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	_, statErr := os.Stat(path)
	needsHeader := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(marshal(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns every entry in <dir>/processing-log.csv, or nil when there is none.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()
	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := unmarshal(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
