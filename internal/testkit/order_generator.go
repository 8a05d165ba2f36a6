package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"orderboard/domain/core"
	"orderboard/domain/order"
)

// OrderGeneratorConfig configures the synthetic order sheet
type OrderGeneratorConfig struct {
	OrderCount        int       `json:"order_count"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	EmptyRowRate      float64   `json:"empty_row_rate"`
	BadDateRate       float64   `json:"bad_date_rate"`
	BadTotalRate      float64   `json:"bad_total_rate"`
	UnknownStatusRate float64   `json:"unknown_status_rate"`
	Seed              int64     `json:"seed"`
}

// DefaultOrderConfig returns a small, slightly messy sheet
func DefaultOrderConfig() OrderGeneratorConfig {
	return OrderGeneratorConfig{
		OrderCount:        60,
		StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		EmptyRowRate:      0.05,
		BadDateRate:       0.05,
		BadTotalRate:      0.03,
		UnknownStatusRate: 0.04,
		Seed:              42,
	}
}

// Header is the column order of generated sheets
var Header = []string{
	order.ColDate, order.ColCode, order.ColClient, order.ColTotal, order.ColType,
	order.ColOrderStatus, order.ColPaymentStatus, order.ColConfirmation, order.ColClaim, order.ColInvoice,
}

var (
	clients         = []string{"Ana Gómez", "Bruno Díaz", "Carla Ruiz", "Diego Paz", "Elena Sosa", "Facundo Ríos", "Gabriela Luna"}
	orderTypes      = []string{"Envío", "Retiro", "Mayorista"}
	orderStatuses   = []string{"Nuevo", "Leido", "En preparación", "Listo para enviar", "Enviado", "Entregado", "Cancelado", ""}
	paymentStatuses = []string{"El pago fue aprobado y acreditado", "approved", "Pendiente", "pending", "in_process", "rejected", "refunded", ""}
	unknownStatuses = []string{"Extraviado", "chargeback", "En revisión"}
)

// OrderGenerator produces order sheets with the quirks of a hand-edited export
type OrderGenerator struct {
	config OrderGeneratorConfig
	rng    *rand.Rand
}

// NewOrderGenerator creates a new order generator
func NewOrderGenerator(config OrderGeneratorConfig) *OrderGenerator {
	return &OrderGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRecords returns the header followed by the generated records
func (g *OrderGenerator) GenerateRecords() [][]string {
	records := [][]string{append([]string(nil), Header...)}
	for i := 0; i < g.config.OrderCount; i++ {
		if g.rng.Float64() < g.config.EmptyRowRate {
			records = append(records, make([]string, len(Header)))
			continue
		}
		records = append(records, g.generateOrder(i+1))
	}
	return records
}

// GenerateTable returns the records as a RawTable
func (g *OrderGenerator) GenerateTable() *order.RawTable {
	records := g.GenerateRecords()
	rows := make([]order.RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(order.RawRow, len(Header))
		for i, h := range Header {
			row[h] = rec[i]
		}
		rows = append(rows, row)
	}
	return &order.RawTable{
		Headers:     append([]string(nil), Header...),
		Rows:        rows,
		Fingerprint: core.ComputeTableHash(records[0], records[1:]),
	}
}

// GenerateCSV returns the records as a CSV export
func (g *OrderGenerator) GenerateCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(g.GenerateRecords()); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// generateOrder builds one record
func (g *OrderGenerator) generateOrder(n int) []string {
	placed := g.randomTimeInRange(g.config.StartDate, g.config.EndDate)
	status := g.pick(orderStatuses)
	payment := g.pick(paymentStatuses)
	if g.rng.Float64() < g.config.UnknownStatusRate {
		status = g.pick(unknownStatuses)
	}

	claim := ""
	if status == "Entregado" && g.rng.Float64() < 0.1 {
		claim = "Producto dañado"
	}
	invoice := ""
	if payment == "approved" || strings.HasPrefix(payment, "El pago fue aprobado") {
		invoice = fmt.Sprintf("FC-A-%05d", n)
	}

	return []string{
		g.formatDate(placed),
		fmt.Sprintf("PED-%04d", n),
		g.pick(clients),
		g.formatTotal(),
		g.pick(orderTypes),
		status,
		payment,
		g.pick([]string{"Sí", "No", ""}),
		claim,
		invoice,
	}
}

// formatDate mostly writes the primary layout, sometimes with drift
func (g *OrderGenerator) formatDate(t time.Time) string {
	if g.rng.Float64() < g.config.BadDateRate {
		return g.pick([]string{"a confirmar", "??", "sin fecha"})
	}
	switch g.rng.Intn(6) {
	case 0:
		return t.Format("2/1/2006")
	case 1:
		return t.Format("02/01/2006, 15:04:05")
	default:
		return t.Format("02/01/2006 15:04:05")
	}
}

// formatTotal writes an es-AR amount with the usual decorations
func (g *OrderGenerator) formatTotal() string {
	if g.rng.Float64() < g.config.BadTotalRate {
		return g.pick([]string{"a cotizar", "-", "consultar"})
	}
	cents := g.rng.Intn(25000000) + 50000
	whole, frac := cents/100, cents%100
	amount := fmt.Sprintf("%s,%02d", groupThousands(whole), frac)
	switch g.rng.Intn(3) {
	case 0:
		return "$" + amount
	case 1:
		return "$ " + amount
	default:
		return amount
	}
}

func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (g *OrderGenerator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}

// randomTimeInRange generates a random time within the given range
func (g *OrderGenerator) randomTimeInRange(start, end time.Time) time.Time {
	delta := end.Unix() - start.Unix()
	if delta <= 0 {
		return start
	}
	return time.Unix(start.Unix()+g.rng.Int63n(delta), 0).UTC()
}
