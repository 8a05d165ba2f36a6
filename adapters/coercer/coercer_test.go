package coercer

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateNormalizerParse(t *testing.T) {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	require.NoError(t, err)
	n := NewDateNormalizer(loc)

	tests := []struct {
		name    string
		raw     string
		want    time.Time
		outcome DateOutcome
	}{
		{"exact padded", "01/03/2024 10:00:00", time.Date(2024, 3, 1, 10, 0, 0, 0, loc), DateExact},
		{"exact unpadded", "1/3/2024 9:05:07", time.Date(2024, 3, 1, 9, 5, 7, 0, loc), DateExact},
		{"stray comma", "15/02/2024, 18:30:00", time.Date(2024, 2, 15, 18, 30, 0, 0, loc), DateExact},
		{"date only falls back day first", "02/03/2024", time.Date(2024, 3, 2, 0, 0, 0, 0, loc), DateFallback},
		{"iso falls back", "2024-03-05 08:00", time.Date(2024, 3, 5, 8, 0, 0, 0, loc), DateFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := n.Parse(tt.raw)
			require.NotNil(t, got)
			assert.Equal(t, tt.outcome, outcome)
			assert.True(t, tt.want.Equal(*got), "want %s got %s", tt.want, got)
		})
	}
}

func TestDateNormalizerFailures(t *testing.T) {
	n := NewDateNormalizer(nil)

	got, outcome := n.Parse("")
	assert.Nil(t, got)
	assert.Equal(t, DateBlank, outcome)

	got, outcome = n.Parse("  ,  ")
	assert.Nil(t, got)
	assert.Equal(t, DateBlank, outcome)

	got, outcome = n.Parse("ayer a la tarde")
	assert.Nil(t, got)
	assert.Equal(t, DateUnparsed, outcome)
}

func TestTotalNormalizerAR(t *testing.T) {
	n := NewTotalNormalizer(ConventionAR)

	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"$1.000,00", 1000, true},
		{"$ 1.234,56 extra", 1234.56, true},
		{"1500", 1500, true},
		{"-250,5", 250.5, true},
		{"12,345", 12.35, true},
		{"0", 0, true},
		{"", 0, true},
		{"abc", 0, false},
		{"$", 0, false},
		{"1,2,3", 0, false},
		{"$ " + strings.Repeat("9", 400), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := n.Parse(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.False(t, math.IsInf(got, 0) || math.IsNaN(got))
		})
	}
}

func TestTotalNormalizerUS(t *testing.T) {
	n := NewTotalNormalizer(ConventionUS)

	got, ok := n.Parse("USD 1,234.56")
	assert.True(t, ok)
	assert.InDelta(t, 1234.56, got, 1e-9)
}

func TestNewNumberConvention(t *testing.T) {
	assert.Equal(t, ConventionAR, NewNumberConvention(",", "."))
	assert.Equal(t, NumberConvention{Decimal: '.'}, NewNumberConvention("", ""))
}
