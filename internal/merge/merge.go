// Package merge concatenates raw exports into one CSV, each file contributing the rows
// below its own detected header. Columns are aligned by name.
package merge

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/challan-dev/challan/internal/ingest"
)

// DefaultOutput is the merged file name used when none is given.
const DefaultOutput = "merged_output.csv"

// Result summarises a merge.
type Result struct {
	Columns []string // union of all headers, in first-seen order
	Rows    int
	Merged  []string // files that contributed rows
	Skipped []Skip
}

// Skip names a file left out of the merge and why.
type Skip struct {
	File   string
	Reason string
}

type table struct {
	header []string
	rows   [][]string
}

// Merge reads every file, finds the row holding all required columns within
// maxOffset rows of the top, and writes the rows below it to w under a single
// header. Cells of columns a file lacks are left empty.
func Merge(w io.Writer, files []ingest.FileInfo, required []string, maxOffset int) (*Result, error) {
	res := &Result{}
	seen := make(map[string]bool)
	var tables []table

	for _, fi := range files {
		t, reason, err := load(fi.Path, required, maxOffset)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", fi.Name, err)
		}
		if reason != "" {
			res.Skipped = append(res.Skipped, Skip{File: fi.Name, Reason: reason})
			continue
		}
		for _, col := range t.header {
			if !seen[col] {
				seen[col] = true
				res.Columns = append(res.Columns, col)
			}
		}
		tables = append(tables, t)
		res.Merged = append(res.Merged, fi.Name)
	}

	position := make(map[string]int, len(res.Columns))
	for i, col := range res.Columns {
		position[col] = i
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(res.Columns); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for _, t := range tables {
		for _, row := range t.rows {
			out := make([]string, len(res.Columns))
			for i, cell := range row {
				if i < len(t.header) {
					out[position[t.header[i]]] = cell
				}
			}
			if err := cw.Write(out); err != nil {
				return nil, fmt.Errorf("writing row %d: %w", res.Rows+2, err)
			}
			res.Rows++
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return res, nil
}

// MergeFile writes the merge to path.
func MergeFile(path string, files []ingest.FileInfo, required []string, maxOffset int) (*Result, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	res, err := Merge(f, files, required, maxOffset)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing %s: %w", path, cerr)
	}
	return res, err
}

// load returns the file's rows below its header, or a non-empty reason when the file
// cannot take part in the merge.
func load(path string, required []string, maxOffset int) (table, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return table{}, "", err
	}
	defer f.Close()

	records, err := ingest.ReadRows(f)
	if err != nil {
		return table{}, fmt.Sprintf("unreadable CSV: %v", err), nil
	}
	offset, ok := ingest.DetectHeader(records, required, maxOffset)
	if !ok {
		return table{}, "valid header not found", nil
	}
	return table{header: dedupe(records[offset]), rows: records[offset+1:]}, "", nil
}

// dedupe suffixes repeated header names so every column keeps its own cell.
func dedupe(header []string) []string {
	out := make([]string, len(header))
	count := make(map[string]int, len(header))
	for i, col := range header {
		count[col]++
		if n := count[col]; n > 1 {
			col = fmt.Sprintf("%s.%d", col, n-1)
		}
		out[i] = col
	}
	return out
}
