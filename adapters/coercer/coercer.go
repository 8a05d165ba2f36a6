package coercer

import (
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// PrimaryDateLayout is the day/month/year layout the sheet normally uses.
// Single and zero-padded day and month both match.
const PrimaryDateLayout = "2/1/2006 15:04:05"

// DateOutcome tells which parse tier accepted a date
type DateOutcome int

const (
	DateBlank DateOutcome = iota
	DateExact
	DateFallback
	DateUnparsed
)

// DateNormalizer parses the order date column in a fixed location
type DateNormalizer struct {
	loc    *time.Location
	layout string
}

// NewDateNormalizer creates a normalizer; a nil location means UTC
func NewDateNormalizer(loc *time.Location) *DateNormalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &DateNormalizer{loc: loc, layout: PrimaryDateLayout}
}

// Parse tries the primary layout, then a permissive day-first parse.
// A nil time means both failed; the caller keeps the raw string.
func (n *DateNormalizer) Parse(raw string) (*time.Time, DateOutcome) {
	cleaned := cleanDate(raw)
	if cleaned == "" {
		return nil, DateBlank
	}

	if t, err := time.ParseInLocation(n.layout, cleaned, n.loc); err == nil {
		return &t, DateExact
	}

	if t, err := dateparse.ParseIn(cleaned, n.loc, dateparse.PreferMonthFirst(false)); err == nil {
		return &t, DateFallback
	}

	return nil, DateUnparsed
}

// cleanDate drops stray commas and collapses runs of whitespace
func cleanDate(raw string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(raw, ",", " ")), " ")
}

// NumberConvention fixes which characters separate thousands and decimals
type NumberConvention struct {
	Decimal   rune
	Thousands rune
}

// ConventionAR is the es-AR convention: 1.234,56
var ConventionAR = NumberConvention{Decimal: ',', Thousands: '.'}

// ConventionUS is the en-US convention: 1,234.56
var ConventionUS = NumberConvention{Decimal: '.', Thousands: ','}

// NewNumberConvention builds a convention from single-character separators.
// An empty thousands separator disables grouping removal.
func NewNumberConvention(decimalSep, thousandsSep string) NumberConvention {
	c := NumberConvention{Decimal: '.'}
	if r := []rune(decimalSep); len(r) > 0 {
		c.Decimal = r[0]
	}
	if r := []rune(thousandsSep); len(r) > 0 {
		c.Thousands = r[0]
	}
	return c
}

// TotalNormalizer turns currency-decorated text into a non-negative amount
type TotalNormalizer struct {
	conv NumberConvention
}

// NewTotalNormalizer creates a normalizer for one number convention
func NewTotalNormalizer(conv NumberConvention) *TotalNormalizer {
	return &TotalNormalizer{conv: conv}
}

// Parse removes thousands separators, maps the decimal separator to '.',
// keeps only digits and '.', and rounds the absolute value to 2 places.
// Unparseable text, or a value too large for a float64, yields 0 and
// ok=false. Blank text is a plain 0.
func (n *TotalNormalizer) Parse(raw string) (float64, bool) {
	if strings.TrimSpace(raw) == "" {
		return 0, true
	}

	var b strings.Builder
	for _, r := range raw {
		switch {
		case n.conv.Thousands != 0 && r == n.conv.Thousands:
			continue
		case r == n.conv.Decimal:
			b.WriteByte('.')
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			b.WriteByte('.')
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	f := d.Abs().Round(2).InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
