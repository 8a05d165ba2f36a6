package order

import (
	"time"

	"orderboard/domain/core"
)

// LoadReport counts the anomalies absorbed while building a dataset
type LoadReport struct {
	SourceRows             int           `json:"source_rows"`
	DroppedEmptyRows       int           `json:"dropped_empty_rows"`
	MissingColumns         []string      `json:"missing_columns"`
	DateFallbacks          int           `json:"date_fallbacks"`
	UnparsedDates          int           `json:"unparsed_dates"`
	UnparsedTotals         int           `json:"unparsed_totals"`
	UnknownOrderStatuses   []string      `json:"unknown_order_statuses"`
	UnknownPaymentStatuses []string      `json:"unknown_payment_statuses"`
	Duration               time.Duration `json:"duration_ns"`
}

// HasAnomalies reports whether anything was defaulted, dropped or left unparsed
func (r LoadReport) HasAnomalies() bool {
	return r.DroppedEmptyRows > 0 || len(r.MissingColumns) > 0 || r.UnparsedDates > 0 ||
		r.UnparsedTotals > 0 || len(r.UnknownOrderStatuses) > 0 || len(r.UnknownPaymentStatuses) > 0
}

// Dataset is an immutable, sorted set of normalized rows from one load
type Dataset struct {
	LoadID      core.LoadID   `json:"load_id"`
	SourceID    core.SourceID `json:"source_id"`
	Fingerprint core.Hash     `json:"fingerprint"`
	LoadedAt    time.Time     `json:"loaded_at"`
	Report      LoadReport    `json:"report"`

	rows          []Row
	orderLabels   []string
	paymentLabels []string
}

// NewDataset sorts rows and precomputes the label options
func NewDataset(source core.SourceID, fingerprint core.Hash, loadedAt time.Time, rows []Row, tables *StatusTables, report LoadReport) *Dataset {
	sorted := SortRows(rows)

	orderPresent := make([]string, 0, len(sorted))
	paymentPresent := make([]string, 0, len(sorted))
	for _, r := range sorted {
		orderPresent = append(orderPresent, r.OrderStatusLabel)
		paymentPresent = append(paymentPresent, r.PaymentStatusLabel)
	}

	return &Dataset{
		LoadID:        core.NewLoadID(),
		SourceID:      source,
		Fingerprint:   fingerprint,
		LoadedAt:      loadedAt,
		Report:        report,
		rows:          sorted,
		orderLabels:   LabelOptions(tables.Order, orderPresent),
		paymentLabels: LabelOptions(tables.Payment, paymentPresent),
	}
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Rows returns a copy of the sorted rows
func (d *Dataset) Rows() []Row {
	if d == nil {
		return nil
	}
	out := make([]Row, len(d.rows))
	copy(out, d.rows)
	return out
}

// Select filters the sorted rows into a new slice
func (d *Dataset) Select(f Filter) []Row {
	if d == nil {
		return []Row{}
	}
	return f.Apply(d.rows)
}

// OrderLabels returns the order-status filter choices
func (d *Dataset) OrderLabels() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.orderLabels...)
}

// PaymentLabels returns the payment-status filter choices
func (d *Dataset) PaymentLabels() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.paymentLabels...)
}
