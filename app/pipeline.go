package app

import (
	"sort"

	"orderboard/adapters/coercer"
	"orderboard/domain/order"
	"orderboard/internal"
)

// Pipeline turns a raw table into normalized, translated rows
type Pipeline struct {
	dates  *coercer.DateNormalizer
	totals *coercer.TotalNormalizer
	tables *order.StatusTables
	logger *internal.Logger
}

// NewPipeline creates a pipeline from its normalizers and lookup tables
func NewPipeline(dates *coercer.DateNormalizer, totals *coercer.TotalNormalizer, tables *order.StatusTables, logger *internal.Logger) *Pipeline {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Pipeline{
		dates:  dates,
		totals: totals,
		tables: tables,
		logger: logger.WithComponent("Pipeline"),
	}
}

// Tables returns the status tables used for translation
func (p *Pipeline) Tables() *order.StatusTables {
	return p.tables
}

// Normalize sanitizes, defaults and normalizes every row of table.
// Per-row problems never fail the call; they are counted in the report.
func (p *Pipeline) Normalize(table *order.RawTable) ([]order.Row, order.LoadReport) {
	sanitized, dropped := order.Sanitize(*table)
	report := order.LoadReport{
		SourceRows:       len(table.Rows),
		DroppedEmptyRows: dropped,
		MissingColumns:   order.MissingColumns(table.Headers),
	}

	unknownOrder := make(map[string]bool)
	unknownPayment := make(map[string]bool)

	rows := make([]order.Row, 0, len(sanitized))
	for _, s := range sanitized {
		row := order.NewRow(order.ApplyDefaults(s))
		p.normalizeRow(&row, &report)

		if _, known := p.tables.Order.Translate(row.OrderStatusRaw); !known {
			unknownOrder[row.OrderStatusRaw] = true
		}
		if _, known := p.tables.Payment.Translate(row.PaymentStatusRaw); !known {
			unknownPayment[row.PaymentStatusRaw] = true
		}
		rows = append(rows, row)
	}

	report.UnknownOrderStatuses = sortedKeys(unknownOrder)
	report.UnknownPaymentStatuses = sortedKeys(unknownPayment)
	p.logReport(report)

	return rows, report
}

// normalizeRow fills the derived fields of one row
func (p *Pipeline) normalizeRow(row *order.Row, report *order.LoadReport) {
	parsed, outcome := p.dates.Parse(row.DateRaw)
	row.DateParsed = parsed
	switch outcome {
	case coercer.DateFallback:
		report.DateFallbacks++
	case coercer.DateUnparsed, coercer.DateBlank:
		report.UnparsedDates++
	}

	total, ok := p.totals.Parse(row.TotalRaw)
	row.Total = total
	if !ok {
		report.UnparsedTotals++
		p.logger.Trace("row %q: total %q is not a number, using 0", row.Code, row.TotalRaw)
	}

	row.OrderStatusLabel = p.tables.Order.Lookup(row.OrderStatusRaw)
	row.PaymentStatusLabel = p.tables.Payment.Lookup(row.PaymentStatusRaw)
}

func (p *Pipeline) logReport(r order.LoadReport) {
	if r.DroppedEmptyRows > 0 {
		p.logger.Debug("%d empty rows dropped", r.DroppedEmptyRows)
	}
	if len(r.MissingColumns) > 0 {
		p.logger.Info("columns missing from source, defaults applied: %v", r.MissingColumns)
	}
	if r.UnparsedDates > 0 {
		p.logger.Warn("%d rows had unparseable dates", r.UnparsedDates)
	}
	if r.UnparsedTotals > 0 {
		p.logger.Warn("%d rows had unparseable totals", r.UnparsedTotals)
	}
	if len(r.UnknownOrderStatuses) > 0 {
		p.logger.Warn("unmapped %s status codes: %q", p.tables.Order.Name(), r.UnknownOrderStatuses)
	}
	if len(r.UnknownPaymentStatuses) > 0 {
		p.logger.Warn("unmapped %s status codes: %q", p.tables.Payment.Name(), r.UnknownPaymentStatuses)
	}
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
