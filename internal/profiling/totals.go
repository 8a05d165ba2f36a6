package profiling

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"orderboard/domain/order"
)

// SampleSize is how many leading totals are kept for display
const SampleSize = 5

// TotalsAnalyzer summarizes the distribution of order totals
type TotalsAnalyzer struct{}

// NewTotalsAnalyzer creates a new totals analyzer
func NewTotalsAnalyzer() *TotalsAnalyzer {
	return &TotalsAnalyzer{}
}

// Analyze profiles the totals of rows in their current order.
// An empty input yields the zero profile.
func (ta *TotalsAnalyzer) Analyze(rows []order.Row) order.TotalsProfile {
	data := make([]float64, len(rows))
	for i, r := range rows {
		data[i] = r.Total
	}
	return ta.AnalyzeValues(data)
}

// AnalyzeValues profiles a slice of amounts
func (ta *TotalsAnalyzer) AnalyzeValues(data []float64) order.TotalsProfile {
	profile := order.TotalsProfile{Count: len(data)}
	if len(data) == 0 {
		return profile
	}

	profile.Sum = roundCents(floats.Sum(data))
	profile.Min = floats.Min(data)
	profile.Max = floats.Max(data)

	if mean, err := stats.Mean(data); err == nil {
		profile.Mean = roundCents(mean)
	}
	if median, err := stats.Median(data); err == nil {
		profile.Median = median
	}

	q25, err25 := stats.Percentile(data, 25)
	q75, err75 := stats.Percentile(data, 75)
	if err25 == nil && err75 == nil {
		profile.Q25, profile.Q75 = q25, q75
		profile.Outliers = detectOutliers(data, q25, q75)
	}

	n := SampleSize
	if len(data) < n {
		n = len(data)
	}
	profile.Samples = append([]float64(nil), data[:n]...)

	return profile
}

// detectOutliers identifies outliers using IQR method
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}

func roundCents(v float64) float64 {
	r, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return r
}
