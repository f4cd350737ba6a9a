package analysis

import "eda/internal/dataset"

// MissingRow is one column of the missing-value census.
type MissingRow struct {
	Column  string  `json:"column"`
	Count   int     `json:"missing"`
	Percent float64 `json:"percent"`
}

// Complete reports a column with no missing values.
func (r MissingRow) Complete() bool { return r.Count == 0 }

// MissingCensus counts, for every inventory column, the records where the
// field is absent, null or blank text. Percent is relative to all records,
// rounded to 2 decimals.
func MissingCensus(ds *dataset.Dataset) []MissingRow {
	cols := ds.Columns()
	counts := make([]int, len(cols))
	for _, r := range ds.Records() {
		for i, c := range cols {
			if v, ok := r.Get(c); !ok || v.IsMissing() {
				counts[i]++
			}
		}
	}

	out := make([]MissingRow, len(cols))
	for i, c := range cols {
		out[i] = MissingRow{Column: c, Count: counts[i], Percent: percent(counts[i], ds.Len())}
	}
	return out
}
