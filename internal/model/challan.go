package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tier is one of the fixed fine-amount categories.
type Tier int

const (
	Tier100 Tier = iota
	Tier200
	Tier1000
)

// Tiers lists every tier in column order.
var Tiers = []Tier{Tier100, Tier200, Tier1000}

var tierAmounts = [...]decimal.Decimal{
	Tier100:  decimal.NewFromInt(100),
	Tier200:  decimal.NewFromInt(200),
	Tier1000: decimal.NewFromInt(1000),
}

// Amount returns the fine amount the tier stands for.
func (t Tier) Amount() decimal.Decimal { return tierAmounts[t] }

func (t Tier) String() string { return tierAmounts[t].String() }

// TierOf buckets an amount. Only exact matches classify; anything else reports false.
func TierOf(amount decimal.Decimal) (Tier, bool) {
	for _, t := range Tiers {
		if amount.Equal(tierAmounts[t]) {
			return t, true
		}
	}
	return 0, false
}

// Record is one parsed challan row. Records are folded into a table and then discarded.
type Record struct {
	Date   time.Time       // calendar day, midnight UTC
	Amount decimal.Decimal //nolint:revive
	Status string          // empty unless the source carries a status column
}

// Bucket accumulates the cases and amount for a single tier.
type Bucket struct {
	Cases  int64
	Amount decimal.Decimal
}

// Add returns the sum of two buckets.
func (b Bucket) Add(o Bucket) Bucket {
	return Bucket{Cases: b.Cases + o.Cases, Amount: b.Amount.Add(o.Amount)}
}

// Totals holds every numeric accumulator of a report row.
type Totals struct {
	CasesFineCollected int64
	Tiers              [3]Bucket // indexed by Tier
	TotalCases         int64
	TotalAmount        decimal.Decimal
}

// Fold adds a single record to the accumulators.
func (t *Totals) Fold(rec Record) {
	if tier, ok := TierOf(rec.Amount); ok {
		t.Tiers[tier].Cases++
		t.Tiers[tier].Amount = t.Tiers[tier].Amount.Add(rec.Amount)
	}
	t.TotalCases++
	t.TotalAmount = t.TotalAmount.Add(rec.Amount)
	t.CasesFineCollected++
}

// Add returns the column-wise sum of two totals.
func (t Totals) Add(o Totals) Totals {
	out := Totals{
		CasesFineCollected: t.CasesFineCollected + o.CasesFineCollected,
		TotalCases:         t.TotalCases + o.TotalCases,
		TotalAmount:        t.TotalAmount.Add(o.TotalAmount),
	}
	for i := range t.Tiers {
		out.Tiers[i] = t.Tiers[i].Add(o.Tiers[i])
	}
	return out
}

// IsZero reports whether nothing has been folded in.
func (t Totals) IsZero() bool { return t.Equal(Totals{}) }

// Equal reports whether every accumulator matches.
func (t Totals) Equal(o Totals) bool {
	if t.CasesFineCollected != o.CasesFineCollected || t.TotalCases != o.TotalCases || !t.TotalAmount.Equal(o.TotalAmount) {
		return false
	}
	for i := range t.Tiers {
		if t.Tiers[i].Cases != o.Tiers[i].Cases || !t.Tiers[i].Amount.Equal(o.Tiers[i].Amount) {
			return false
		}
	}
	return true
}

// Row is one keyed line of a daily, monthly or range table.
type Row struct {
	Key Key
	Totals
}
