package rollup

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/challan-dev/challan/internal/aggregate"
	"github.com/challan-dev/challan/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// fixture spans Dec 2020 – Feb 2021 with records scattered across months.
func fixture(t *testing.T) []model.Row {
	t.Helper()
	tbl, err := aggregate.NewTable(date(2020, 12, 1), date(2021, 2, 10))
	require.NoError(t, err)

	adds := []struct {
		d      time.Time
		amount int64
	}{
		{date(2020, 12, 1), 100},
		{date(2020, 12, 31), 200},
		{date(2021, 1, 5), 100},
		{date(2021, 1, 5), 200},
		{date(2021, 1, 6), 1000},
		{date(2021, 1, 31), 500},
		{date(2021, 2, 10), 1000},
	}
	for _, a := range adds {
		require.True(t, tbl.Add(model.Record{Date: a.d, Amount: decimal.NewFromInt(a.amount)}))
	}
	return tbl.Rows()
}

// referenceMonthly recomputes the month sums without going through Monthly.
func referenceMonthly(rows []model.Row) map[string]model.Totals {
	ref := make(map[string]model.Totals)
	for _, r := range rows {
		k := r.Key.Date.Format("2006-01")
		ref[k] = ref[k].Add(r.Totals)
	}
	return ref
}

func TestMonthly_MatchesReference(t *testing.T) {
	rows := fixture(t)
	monthly := Monthly(rows)
	ref := referenceMonthly(rows)

	require.Len(t, monthly, 3)
	assert.Equal(t, []string{"2020-12", "2021-01", "2021-02"},
		[]string{monthly[0].Key.String(), monthly[1].Key.String(), monthly[2].Key.String()})
	for _, m := range monthly {
		assert.Equal(t, model.KeyMonth, m.Key.Kind)
		assert.True(t, ref[m.Key.String()].Equal(m.Totals), "month %s", m.Key)
	}

	jan := monthly[1]
	assert.Equal(t, int64(4), jan.TotalCases)
	assert.Equal(t, "1800", jan.TotalAmount.String())
	assert.Equal(t, int64(1), jan.Tiers[model.Tier100].Cases)
	assert.Equal(t, int64(1), jan.Tiers[model.Tier1000].Cases)
}

func TestMonthly_FixedPoint(t *testing.T) {
	once := Monthly(fixture(t))
	twice := Monthly(once)

	require.Len(t, twice, len(once))
	for i := range once {
		assert.Equal(t, once[i].Key, twice[i].Key)
		assert.True(t, once[i].Totals.Equal(twice[i].Totals))
	}
}

func TestMonthly_IgnoresTotalRow(t *testing.T) {
	rows := fixture(t)
	plain := Monthly(rows)
	withTotal := Monthly(WithTotal(rows))

	require.Len(t, withTotal, len(plain))
	for i := range plain {
		assert.True(t, plain[i].Totals.Equal(withTotal[i].Totals))
	}
}

func TestRange_Inclusive(t *testing.T) {
	rows := fixture(t)
	got := Range(rows, date(2021, 1, 5), date(2021, 1, 6))

	require.Len(t, got, 2)
	assert.Equal(t, "2021-01-05", got[0].Key.String())
	assert.Equal(t, "2021-01-06", got[1].Key.String())
	assert.Equal(t, int64(2), got[0].TotalCases)
	assert.Equal(t, int64(1), got[1].TotalCases)
}

func TestRange_FullSpanEqualsDaily(t *testing.T) {
	rows := fixture(t)
	got := Range(WithTotal(rows), rows[0].Key.Date, rows[len(rows)-1].Key.Date)

	require.Len(t, got, len(rows))
	for i := range rows {
		assert.Equal(t, rows[i].Key, got[i].Key)
		assert.True(t, rows[i].Totals.Equal(got[i].Totals))
	}
}

func TestRange_Empty(t *testing.T) {
	assert.Empty(t, Range(fixture(t), date(2022, 1, 1), date(2022, 1, 31)))
}

func TestWithTotal(t *testing.T) {
	rows := fixture(t)
	out := WithTotal(rows)

	require.Len(t, out, len(rows)+1)
	last := out[len(out)-1]
	assert.True(t, last.Key.IsTotal())
	assert.Equal(t, "Total", last.Key.String())

	var cases, tier100 int64
	amount := decimal.Zero
	for _, r := range rows {
		cases += r.TotalCases
		tier100 += r.Tiers[model.Tier100].Cases
		amount = amount.Add(r.TotalAmount)
	}
	assert.Equal(t, cases, last.TotalCases)
	assert.Equal(t, cases, last.CasesFineCollected)
	assert.Equal(t, tier100, last.Tiers[model.Tier100].Cases)
	assert.True(t, amount.Equal(last.TotalAmount))
	assert.Equal(t, int64(7), last.TotalCases)
	assert.Equal(t, "3100", last.TotalAmount.String())

	// Applying it twice still leaves exactly one totals row.
	again := WithTotal(out)
	require.Len(t, again, len(out))
	assert.True(t, again[len(again)-1].Totals.Equal(last.Totals))
}

func TestTotal_MonthlyAndDailyAgree(t *testing.T) {
	rows := fixture(t)
	assert.True(t, Total(rows).Totals.Equal(Total(Monthly(rows)).Totals))
}
