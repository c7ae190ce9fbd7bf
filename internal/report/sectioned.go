package report

import (
	"github.com/xuri/excelize/v2"

	"github.com/challan-dev/challan/internal/status"
)

// StatusSheet is the sheet name of the sectioned status report.
const StatusSheet = "Report"

type section struct {
	title   string
	columns []string
}

// Each section spans three band columns plus its grand total.
var sections = []section{
	{"Total Number of Cases", []string{"No. of 100's", "No. of 200-900's", "No. of 1000's", "Total Cases"}},
	{"Total Cases Fine Collected", []string{"No. of 100's Collected", "No. of 200-900's Collected", "No. of 1000's Collected", "Total Fine Collected (No. of Cases)"}},
	{"Total Cases Pending", []string{"No. of 100's Pending", "No. of 200-900's Pending", "No. of 1000's Pending", "Total Cases Pending (No. of Cases)"}},
	{"Total Amount Collected", []string{"100's Collected", "200-900's Collected", "1000's Collected", "Grand Total (Amount Collected)"}},
}

func sectionedValues(r status.Row) []any {
	vals := []any{r.Key.String()}
	for _, b := range r.Bands {
		vals = append(vals, b.Cases)
	}
	vals = append(vals, r.TotalCases())
	for _, b := range r.Bands {
		vals = append(vals, b.Collected)
	}
	vals = append(vals, r.TotalCollected())
	for _, b := range r.Bands {
		vals = append(vals, b.Pending())
	}
	vals = append(vals, r.TotalPending())
	for _, b := range r.Bands {
		vals = append(vals, amountCell(b.Amount))
	}
	return append(vals, amountCell(r.TotalAmount()))
}

// WriteSectioned writes the status report: a merged band of section titles over a row
// of column labels, one body row per key, then the totals row.
func WriteSectioned(path, keyHeader string, rows []status.Row, total status.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", StatusSheet); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	centered, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	labels := []any{keyHeader}
	col := 2
	for _, s := range sections {
		first, _ := excelize.CoordinatesToCellName(col, 1)
		last, _ := excelize.CoordinatesToCellName(col+len(s.columns)-1, 1)
		if err := f.MergeCell(StatusSheet, first, last); err != nil {
			return &WriteError{Path: path, Err: err}
		}
		if err := f.SetCellValue(StatusSheet, first, s.title); err != nil {
			return &WriteError{Path: path, Err: err}
		}
		if err := f.SetCellStyle(StatusSheet, first, last, centered); err != nil {
			return &WriteError{Path: path, Err: err}
		}
		labels = append(labels, toAny(s.columns)...)
		col += len(s.columns)
	}
	if err := f.SetSheetRow(StatusSheet, "A2", &labels); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	body := append(append([]status.Row{}, rows...), total)
	for i, r := range body {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return &WriteError{Path: path, Err: err}
		}
		vals := sectionedValues(r)
		if err := f.SetSheetRow(StatusSheet, cell, &vals); err != nil {
			return &WriteError{Path: path, Err: err}
		}
	}
	return save(f, path)
}
