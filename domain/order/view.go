package order

import (
	"sort"
	"strings"
)

// Filter holds optional equality constraints on translated labels.
// An empty field accepts every row.
type Filter struct {
	OrderStatus   string `json:"order_status,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
}

// IsEmpty reports whether no constraint is set
func (f Filter) IsEmpty() bool {
	return f.OrderStatus == "" && f.PaymentStatus == ""
}

// Matches applies both constraints to one row
func (f Filter) Matches(r Row) bool {
	if f.OrderStatus != "" && r.OrderStatusLabel != f.OrderStatus {
		return false
	}
	if f.PaymentStatus != "" && r.PaymentStatusLabel != f.PaymentStatus {
		return false
	}
	return true
}

// Apply returns the matching rows in their original order as a new slice
func (f Filter) Apply(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// SortRows returns a copy of rows ordered by parsed date descending with
// undated rows last. When no row has a parsed date the raw date text is
// compared instead, also descending. The sort is stable.
func SortRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)

	anyDate := false
	for _, r := range out {
		if r.HasDate() {
			anyDate = true
			break
		}
	}

	if !anyDate {
		sort.SliceStable(out, func(i, j int) bool {
			return strings.Compare(out[i].DateRaw, out[j].DateRaw) > 0
		})
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DateParsed, out[j].DateParsed
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out
}

// LabelOptions lists the distinct labels present in rows: labels known to
// the lookup first in table order, then the rest sorted.
func LabelOptions(lookup *StatusLookup, present []string) []string {
	seen := make(map[string]bool, len(present))
	for _, p := range present {
		seen[p] = true
	}

	var out []string
	for _, label := range lookup.Labels() {
		if seen[label] {
			out = append(out, label)
			delete(seen, label)
		}
	}
	rest := make([]string, 0, len(seen))
	for label := range seen {
		rest = append(rest, label)
	}
	sort.Strings(rest)
	return append(out, rest...)
}
