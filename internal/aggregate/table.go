// Package aggregate holds the dense calendar table that challan records are folded into.
package aggregate

import (
	"time"

	"github.com/challan-dev/challan/internal/config"
	"github.com/challan-dev/challan/internal/model"
)

const secondsPerDay = 24 * 60 * 60

// daysBetween counts whole days from a to b, both UTC midnights. Unix seconds do not
// overflow the way a time.Duration does past ~292 years.
func daysBetween(a, b time.Time) int {
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}

// Table is a gapless, ascending run of day rows covering [start, end].
// It is owned by a single batch and is not safe for concurrent writers.
type Table struct {
	start time.Time
	rows  []model.Row
}

// NewTable builds a zeroed day row for every date from epoch to end inclusive.
func NewTable(epoch, end time.Time) (*Table, error) {
	start, stop := model.Day(epoch), model.Day(end)
	if start.After(stop) {
		return nil, config.Errorf("epoch %s is after end date %s",
			start.Format(config.DateLayout), stop.Format(config.DateLayout))
	}

	n := daysBetween(start, stop) + 1
	rows := make([]model.Row, n)
	for i := range rows {
		rows[i].Key = model.DateKey(start.AddDate(0, 0, i))
	}
	return &Table{start: start, rows: rows}, nil
}

// Start returns the first date of the table.
func (t *Table) Start() time.Time { return t.start }

// End returns the last date of the table.
func (t *Table) End() time.Time { return t.rows[len(t.rows)-1].Key.Date }

// Len returns the number of day rows.
func (t *Table) Len() int { return len(t.rows) }

func (t *Table) index(date time.Time) (int, bool) {
	d := model.Day(date)
	if d.Before(t.start) {
		return 0, false
	}
	i := daysBetween(t.start, d)
	if i >= len(t.rows) {
		return 0, false
	}
	return i, true
}

// Add folds rec into the row for its date. Records dated outside the table are
// dropped and reported with false.
func (t *Table) Add(rec model.Record) bool {
	i, ok := t.index(rec.Date)
	if !ok {
		return false
	}
	t.rows[i].Fold(rec)
	return true
}

// Lookup returns the row for date.
func (t *Table) Lookup(date time.Time) (model.Row, bool) {
	i, ok := t.index(date)
	if !ok {
		return model.Row{}, false
	}
	return t.rows[i], true
}

// Rows returns a copy of the day rows in ascending date order.
func (t *Table) Rows() []model.Row {
	out := make([]model.Row, len(t.rows))
	copy(out, t.rows)
	return out
}
