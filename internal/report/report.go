// Package report writes finished tables to xlsx workbooks.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/challan-dev/challan/internal/config"
	"github.com/challan-dev/challan/internal/model"
)

// Kind names a report type.
type Kind string

const (
	KindDaily         Kind = "daily"
	KindMonthly       Kind = "monthly"
	KindCustom        Kind = "custom"
	KindStatusDaily   Kind = "status-daily"
	KindStatusMonthly Kind = "status-monthly"
)

// Window is an inclusive custom date range.
type Window struct {
	Start, End string // YYYY-MM-DD, as given by the caller
}

// Namer builds deterministic report file names.
type Namer struct {
	Prefix       string
	StatusPrefix string
}

// NamerFromConfig returns the file namer configured in cfg.
func NamerFromConfig(cfg *config.Config) Namer {
	return Namer{Prefix: cfg.Output.Prefix, StatusPrefix: cfg.Output.StatusPrefix}
}

// FileName returns the workbook name for kind. Custom reports embed the literal window dates.
func (n Namer) FileName(kind Kind, w Window) string {
	switch kind {
	case KindCustom:
		return fmt.Sprintf("%s_%s_to_%s.xlsx", n.Prefix, w.Start, w.End)
	case KindStatusDaily:
		return n.StatusPrefix + "_daily.xlsx"
	case KindStatusMonthly:
		return n.StatusPrefix + "_monthly.xlsx"
	default:
		return fmt.Sprintf("%s_%s.xlsx", n.Prefix, kind)
	}
}

// WriteError means a report could not be written. Other reports of the batch still run.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing report %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// FlatHeaders are the column labels of the flat layout after the key column.
var FlatHeaders = []string{
	"No.of Cases Fine Collected",
	"Total No. of 100 Rs Cases",
	"Collected Fine Amount in 100 Rs",
	"Total No. of 200 Rs Cases",
	"Collected Fine Amount in 200 Rs",
	"Total No. of 1000 Rs Cases",
	"Collected Fine Amount in 1000 Rs",
	"Total No. of Cases Fine Collected",
	"Total Fine Amount Collected",
}

// amountCell keeps whole amounts exact as integers; Excel stores anything else as a
// float regardless.
func amountCell(d decimal.Decimal) any {
	if d.IsInteger() {
		return d.IntPart()
	}
	return d.InexactFloat64()
}

func flatValues(r model.Row) []any {
	vals := []any{r.Key.String(), r.CasesFineCollected}
	for _, t := range model.Tiers {
		vals = append(vals, r.Tiers[t].Cases, amountCell(r.Tiers[t].Amount))
	}
	return append(vals, r.TotalCases, amountCell(r.TotalAmount))
}

// WriteFlat writes rows to a single sheet under one header row. keyHeader labels the
// first column ("Date" or "Month"). Rows are written as given, totals row included.
func WriteFlat(path, sheet, keyHeader string, rows []model.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	header := append([]any{keyHeader}, toAny(FlatHeaders)...)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return &WriteError{Path: path, Err: err}
		}
		vals := flatValues(r)
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return &WriteError{Path: path, Err: err}
		}
	}
	return save(f, path)
}

func save(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := f.SaveAs(path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
