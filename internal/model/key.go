package model

import "time"

// KeyKind distinguishes the kinds of row keys a table can carry.
type KeyKind int

const (
	KeyDate KeyKind = iota
	KeyMonth
	KeyTotal
)

// TotalLabel is the key printed on synthesized totals rows.
const TotalLabel = "Total"

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// Key identifies a table row: a calendar date, a calendar month, or the totals sentinel.
type Key struct {
	Kind KeyKind
	Date time.Time // midnight UTC; first of the month for KeyMonth, zero for KeyTotal
}

// DateKey returns the key for the calendar day containing t.
func DateKey(t time.Time) Key {
	return Key{Kind: KeyDate, Date: Day(t)}
}

// MonthKey returns the key for the calendar month containing t.
func MonthKey(t time.Time) Key {
	return Key{Kind: KeyMonth, Date: time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)}
}

// TotalKey returns the totals sentinel key.
func TotalKey() Key {
	return Key{Kind: KeyTotal}
}

// IsTotal reports whether k is the totals sentinel.
func (k Key) IsTotal() bool { return k.Kind == KeyTotal }

func (k Key) String() string {
	switch k.Kind {
	case KeyDate:
		return k.Date.Format(dateLayout)
	case KeyMonth:
		return k.Date.Format(monthLayout)
	default:
		return TotalLabel
	}
}

// Day truncates t to its calendar date at midnight UTC, keeping the wall-clock date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
