package ingest

import "github.com/challan-dev/challan/internal/config"

// Schema names the columns a source file must carry. Names match exactly.
type Schema struct {
	DateColumn   string
	AmountColumn string
	StatusColumn string // optional; required only when set
}

// Required returns the column names a header row must contain.
func (s Schema) Required() []string {
	cols := []string{s.DateColumn, s.AmountColumn}
	if s.StatusColumn != "" {
		cols = append(cols, s.StatusColumn)
	}
	return cols
}

// PaymentSchema is the layout of payment exports: payment date and amount.
func PaymentSchema(cols config.ColumnsConfig) Schema {
	return Schema{DateColumn: cols.PaymentDate, AmountColumn: cols.Amount}
}

// StatusSchema is the layout of challan exports that carry a collection status.
func StatusSchema(cols config.ColumnsConfig) Schema {
	return Schema{DateColumn: cols.ChallanDate, AmountColumn: cols.Amount, StatusColumn: cols.Status}
}
