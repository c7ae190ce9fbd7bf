// Package rollup derives monthly, date-window and totals views from day rows.
//
// Every function ignores totals rows in its input, so a table that already carries
// a trailing "Total" row can be rolled up again without double counting.
package rollup

import (
	"sort"
	"time"

	"github.com/challan-dev/challan/internal/model"
)

// Monthly sums rows by calendar month, in ascending month order.
func Monthly(rows []model.Row) []model.Row {
	byMonth := make(map[time.Time]int)
	var out []model.Row
	for _, r := range rows {
		if r.Key.IsTotal() {
			continue
		}
		k := model.MonthKey(r.Key.Date)
		i, ok := byMonth[k.Date]
		if !ok {
			i = len(out)
			byMonth[k.Date] = i
			out = append(out, model.Row{Key: k})
		}
		out[i].Totals = out[i].Totals.Add(r.Totals)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key.Date.Before(out[j].Key.Date) })
	return out
}

// Range keeps the rows dated within [start, end] inclusive, at their original granularity.
func Range(rows []model.Row, start, end time.Time) []model.Row {
	from, to := model.Day(start), model.Day(end)
	var out []model.Row
	for _, r := range rows {
		if r.Key.IsTotal() {
			continue
		}
		if r.Key.Date.Before(from) || r.Key.Date.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Total returns the column-wise sum of rows under the totals key.
func Total(rows []model.Row) model.Row {
	total := model.Row{Key: model.TotalKey()}
	for _, r := range rows {
		if r.Key.IsTotal() {
			continue
		}
		total.Totals = total.Totals.Add(r.Totals)
	}
	return total
}

// WithTotal returns a copy of the data rows followed by exactly one totals row.
func WithTotal(rows []model.Row) []model.Row {
	out := make([]model.Row, 0, len(rows)+1)
	for _, r := range rows {
		if !r.Key.IsTotal() {
			out = append(out, r)
		}
	}
	return append(out, Total(out))
}
