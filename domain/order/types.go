package order

import (
	"time"

	"orderboard/domain/core"
)

// RawRow is one source record keyed by header, all values as delivered
type RawRow map[string]string

// RawTable is the tabular payload returned by a source fetcher
type RawTable struct {
	Headers     []string
	Rows        []RawRow
	Fingerprint core.Hash
}

// Cell is a sanitized value; Valid is false for the null marker
type Cell struct {
	Text  string
	Valid bool
}

// Null is the sanitized representation of an empty source value
var Null = Cell{}

// Value wraps a non-empty text value
func Value(s string) Cell {
	return Cell{Text: s, Valid: true}
}

// SanitizedRow is a RawRow with empty strings turned into Null
type SanitizedRow map[string]Cell

// Row is the fixed-schema order record produced by the pipeline
type Row struct {
	Code               string     `json:"code"`
	DateRaw            string     `json:"date_raw"`
	DateParsed         *time.Time `json:"date_parsed"`
	Client             string     `json:"client"`
	TotalRaw           string     `json:"-"`
	Total              float64    `json:"total"`
	Type               string     `json:"type"`
	OrderStatusRaw     string     `json:"order_status_raw"`
	PaymentStatusRaw   string     `json:"payment_status_raw"`
	OrderStatusLabel   string     `json:"order_status_label"`
	PaymentStatusLabel string     `json:"payment_status_label"`
	Confirmation       string     `json:"confirmation"`
	Claim              string     `json:"claim"`
	Invoice            string     `json:"invoice"`
}

// HasDate reports whether the date column parsed
func (r Row) HasDate() bool {
	return r.DateParsed != nil
}
