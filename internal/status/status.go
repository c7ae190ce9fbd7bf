// Package status builds the collected-versus-pending view of challan records.
//
// Unlike the calendar table it only has rows for dates (or months) that occur in the
// data, and its middle tier is the 200–900 range rather than an exact amount.
package status

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/challan-dev/challan/internal/model"
)

// Pending is the status value of an unpaid challan. Anything else counts as collected.
const Pending = "Pending"

// Band indexes the three amount bands of the status report.
type Band int

const (
	Band100 Band = iota
	Band200to900
	Band1000
	numBands
)

// BandLabels are the column labels of each band.
var BandLabels = [numBands]string{"100's", "200-900's", "1000's"}

var (
	amount100  = decimal.NewFromInt(100)
	amount200  = decimal.NewFromInt(200)
	amount900  = decimal.NewFromInt(900)
	amount1000 = decimal.NewFromInt(1000)
)

// BandOf buckets an amount: exactly 100, 200 through 900 inclusive, or exactly 1000.
func BandOf(amount decimal.Decimal) (Band, bool) {
	switch {
	case amount.Equal(amount100):
		return Band100, true
	case amount.GreaterThanOrEqual(amount200) && amount.LessThanOrEqual(amount900):
		return Band200to900, true
	case amount.Equal(amount1000):
		return Band1000, true
	}
	return 0, false
}

// IsPending reports whether a status value marks the challan as unpaid.
func IsPending(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), Pending)
}

// Granularity selects daily or monthly rows.
type Granularity int

const (
	Daily Granularity = iota
	Monthly
)

// Window is an inclusive date filter. A nil *Window keeps every record.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls within the window.
func (w *Window) Contains(d time.Time) bool {
	if w == nil {
		return true
	}
	d = model.Day(d)
	return !d.Before(model.Day(w.Start)) && !d.After(model.Day(w.End))
}

// Counts are the base columns for one band.
type Counts struct {
	Cases     int64
	Collected int64
	Amount    decimal.Decimal // collected amount
}

// Pending returns the cases not yet collected.
func (c Counts) Pending() int64 { return c.Cases - c.Collected }

func (c Counts) add(o Counts) Counts {
	return Counts{Cases: c.Cases + o.Cases, Collected: c.Collected + o.Collected, Amount: c.Amount.Add(o.Amount)}
}

// Row is one date or month of the status report.
type Row struct {
	Key   model.Key
	Bands [numBands]Counts
}

// TotalCases sums cases across bands.
func (r Row) TotalCases() int64 {
	var n int64
	for _, b := range r.Bands {
		n += b.Cases
	}
	return n
}

// TotalCollected sums collected cases across bands.
func (r Row) TotalCollected() int64 {
	var n int64
	for _, b := range r.Bands {
		n += b.Collected
	}
	return n
}

// TotalPending sums pending cases across bands.
func (r Row) TotalPending() int64 {
	var n int64
	for _, b := range r.Bands {
		n += b.Pending()
	}
	return n
}

// TotalAmount sums collected amounts across bands.
func (r Row) TotalAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, b := range r.Bands {
		sum = sum.Add(b.Amount)
	}
	return sum
}

func (r *Row) fold(rec model.Record) {
	band, ok := BandOf(rec.Amount)
	if !ok {
		return
	}
	c := &r.Bands[band]
	c.Cases++
	if !IsPending(rec.Status) {
		c.Collected++
		c.Amount = c.Amount.Add(rec.Amount)
	}
}

// Build groups records by date or month, in ascending key order. Records outside
// window are skipped before grouping. Amounts outside every band produce a row for
// their key but add to no column.
func Build(records []model.Record, g Granularity, window *Window) []Row {
	index := make(map[time.Time]int)
	var rows []Row
	for _, rec := range records {
		if !window.Contains(rec.Date) {
			continue
		}
		key := model.DateKey(rec.Date)
		if g == Monthly {
			key = model.MonthKey(rec.Date)
		}
		i, ok := index[key.Date]
		if !ok {
			i = len(rows)
			index[key.Date] = i
			rows = append(rows, Row{Key: key})
		}
		rows[i].fold(rec)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key.Date.Before(rows[j].Key.Date) })
	return rows
}

// Total sums every base column across rows. Derived columns of the result are
// computed from these sums, never by adding up per-row derived values.
func Total(rows []Row) Row {
	total := Row{Key: model.TotalKey()}
	for _, r := range rows {
		if r.Key.IsTotal() {
			continue
		}
		for i := range total.Bands {
			total.Bands[i] = total.Bands[i].add(r.Bands[i])
		}
	}
	return total
}
