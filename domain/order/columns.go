package order

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Source column names as they appear in the sheet header
const (
	ColDate          = "Fecha"
	ColCode          = "Código"
	ColClient        = "Cliente"
	ColTotal         = "Total"
	ColType          = "Tipo"
	ColOrderStatus   = "Estado de Pedido"
	ColPaymentStatus = "Estado de Pago"
	ColConfirmation  = "Confirmación"
	ColClaim         = "Reclamo"
	ColInvoice       = "factura"
)

// Placeholder used for unset status columns
const StatusUndefined = "Sin definir"

// Column declares a source column and the value used when it is absent
type Column struct {
	Name    string
	Default string
}

// Columns is the ordered column table applied by ApplyDefaults
var Columns = []Column{
	{Name: ColDate, Default: ""},
	{Name: ColCode, Default: ""},
	{Name: ColClient, Default: "N/A"},
	{Name: ColTotal, Default: "0"},
	{Name: ColType, Default: "N/A"},
	{Name: ColOrderStatus, Default: StatusUndefined},
	{Name: ColPaymentStatus, Default: StatusUndefined},
	{Name: ColConfirmation, Default: ""},
	{Name: ColClaim, Default: ""},
	{Name: ColInvoice, Default: ""},
}

// CanonicalHeader trims and NFC-normalizes a header cell and maps it onto a
// declared column name when they differ only by case. Unknown headers are
// returned normalized.
func CanonicalHeader(h string) string {
	h = norm.NFC.String(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	for _, col := range Columns {
		if strings.EqualFold(h, col.Name) {
			return col.Name
		}
	}
	return h
}

// MissingColumns lists declared columns not present in headers, in table order
func MissingColumns(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, col := range Columns {
		if !present[col.Name] {
			missing = append(missing, col.Name)
		}
	}
	return missing
}

// ApplyDefaults inserts the declared default for every column absent from the row.
// Present-but-null cells are kept as they are.
func ApplyDefaults(row SanitizedRow) SanitizedRow {
	out := make(SanitizedRow, len(row)+len(Columns))
	for k, v := range row {
		out[k] = v
	}
	for _, col := range Columns {
		if _, ok := out[col.Name]; !ok {
			out[col.Name] = Value(col.Default)
		}
	}
	return out
}

// NewRow builds the fixed-schema Row from a defaulted row. Derived fields
// (DateParsed, Total, labels) are filled by the normalizers.
func NewRow(row SanitizedRow) Row {
	text := func(col string) string { return row[col].Text }
	return Row{
		Code:             text(ColCode),
		DateRaw:          text(ColDate),
		Client:           text(ColClient),
		TotalRaw:         text(ColTotal),
		Type:             text(ColType),
		OrderStatusRaw:   text(ColOrderStatus),
		PaymentStatusRaw: text(ColPaymentStatus),
		Confirmation:     text(ColConfirmation),
		Claim:            text(ColClaim),
		Invoice:          text(ColInvoice),
	}
}
