package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/challan-dev/challan/internal/config"
	"github.com/challan-dev/challan/internal/model"
)

// Options tunes header probing and date parsing.
type Options struct {
	MaxHeaderOffset int
	DateLayouts     []string
}

// OptionsFromConfig returns the ingest options configured in cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{MaxHeaderOffset: cfg.MaxHeaderOffset, DateLayouts: cfg.DateLayouts}
}

// FormatError means a file has no usable header or cannot be read as CSV.
// The file is skipped; a batch carries on with the next one.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return "invalid file: " + e.Reason
	}
	return fmt.Sprintf("invalid file %s: %s", e.Path, e.Reason)
}

// Result holds the records of one file plus the rows that had to be dropped.
type Result struct {
	Records    []model.Record
	Offset     int // leading rows skipped before the header
	Rows       int // data rows after the header
	BadDates   int
	BadAmounts int
}

// Dropped returns the number of data rows that did not become records.
func (r *Result) Dropped() int { return r.BadDates + r.BadAmounts }

// HasAnomalies reports whether any row of the file was dropped.
func (r *Result) HasAnomalies() bool { return r.Dropped() > 0 }

// ParseFile opens path and parses it with Parse.
func ParseFile(path string, schema Schema, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	res, err := Parse(f, schema, opts)
	if fe, ok := err.(*FormatError); ok {
		fe.Path = path
	}
	return res, err
}

// Parse reads delimited rows, locates the header and converts every data row into a
// record. Rows with an unparseable date or amount are dropped and counted.
func Parse(r io.Reader, schema Schema, opts Options) (*Result, error) {
	records, err := ReadRows(r)
	if err != nil {
		return nil, &FormatError{Reason: err.Error()}
	}

	required := schema.Required()
	offset, ok := DetectHeader(records, required, opts.MaxHeaderOffset)
	if !ok {
		return nil, &FormatError{Reason: fmt.Sprintf("no header with columns %q in the first %d rows",
			required, opts.MaxHeaderOffset+1)}
	}

	idx := columnIndex(records[offset])
	dateCol, amountCol := idx[schema.DateColumn], idx[schema.AmountColumn]
	statusCol := -1
	if schema.StatusColumn != "" {
		statusCol = idx[schema.StatusColumn]
	}

	res := &Result{Offset: offset}
	for _, row := range records[offset+1:] {
		res.Rows++
		d, ok := ParseDate(field(row, dateCol), opts.DateLayouts)
		if !ok {
			res.BadDates++
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(field(row, amountCol)))
		if err != nil {
			res.BadAmounts++
			continue
		}
		rec := model.Record{Date: d, Amount: amount}
		if statusCol >= 0 {
			rec.Status = strings.TrimSpace(field(row, statusCol))
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// ReadRows reads every row of a CSV stream, tolerating ragged rows and stray quotes.
// A leading byte order mark is removed.
func ReadRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return records, nil
}

// ParseDate tries each layout in order and returns the calendar day of the first match.
func ParseDate(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), true
		}
	}
	return time.Time{}, false
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
