package analysis

import (
	"math"

	"eda/internal/config"
	"eda/internal/dataset"
)

// NumericRow summarizes one numeric feature. With Count == 0 the three
// measures are not applicable.
type NumericRow struct {
	Feature string  `json:"feature"`
	Count   int     `json:"count"`
	Mean    Measure `json:"mean"`
	Min     Measure `json:"min"`
	Max     Measure `json:"max"`
}

// NumericSummary computes count, mean, min and max over the non-null values
// of each numeric feature, in schema order. The mean is sum/count; only when
// the float64 sum overflows does it fall back to a running mean. Features no
// record carries are still reported, with Count 0.
func NumericSummary(ds *dataset.Dataset, schema config.Schema) []NumericRow {
	out := make([]NumericRow, 0, len(schema.NumericFeatures))
	for _, f := range schema.NumericFeatures {
		out = append(out, summarize(ds, f))
	}
	return out
}

func summarize(ds *dataset.Dataset, feature string) NumericRow {
	row := NumericRow{Feature: feature}
	var sum, running float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range ds.Records() {
		v, ok := r.Get(feature)
		if !ok {
			continue
		}
		x, ok := v.Float()
		if !ok {
			continue
		}
		row.Count++
		sum += x
		running += (x - running) / float64(row.Count)
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if row.Count == 0 {
		return row
	}
	mean := sum / float64(row.Count)
	if math.IsInf(sum, 0) {
		// The sum overflowed; the running mean stays finite.
		mean = running
	}
	// Rounding error can leave the mean a few ulps outside [min, max].
	mean = math.Max(lo, math.Min(hi, mean))
	row.Mean, row.Min, row.Max = some(mean), some(lo), some(hi)
	return row
}
