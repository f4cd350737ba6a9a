package analysis

import (
	"eda/internal/config"
	"eda/internal/dataset"
)

// TargetDistribution is the binary target breakdown over train records.
// When no train record has a target value, Available is false and every
// rate is not applicable.
type TargetDistribution struct {
	Field     string  `json:"field"`
	Available bool    `json:"available"`
	Negative  int     `json:"negative"` // target == 0
	Positive  int     `json:"positive"` // target == 1
	Other     int     `json:"other"`    // any other value; flagged, not counted
	Total     int     `json:"total"`    // Negative + Positive
	Rate      Measure `json:"positive_rate"`
}

// Buckets returns the 0/1 counts as a distribution table.
func (t TargetDistribution) Buckets() []Bucket {
	return []Bucket{{Value: "0", Count: t.Negative}, {Value: "1", Count: t.Positive}}
}

// TargetDistributionOf counts target values 0 and 1 over train records
// with a non-null target. Test records never contribute.
func TargetDistributionOf(ds *dataset.Dataset, schema config.Schema) TargetDistribution {
	td := TargetDistribution{Field: schema.TargetField}
	for _, r := range ds.Records() {
		switch outcome(r, schema.TargetField) {
		case outcomeNegative:
			td.Negative++
		case outcomePositive:
			td.Positive++
		case outcomeOther:
			td.Other++
		}
	}
	td.Total = td.Negative + td.Positive
	td.Available = td.Total > 0
	if td.Available {
		td.Rate = some(float64(td.Positive) / float64(td.Total) * 100)
	}
	return td
}

// RateRow is the target breakdown for one value of a categorical feature.
type RateRow struct {
	Value     string  `json:"value"`
	Count     int     `json:"count"`
	Positives int     `json:"positives"`
	Rate      Measure `json:"rate"`
}

// TargetRate cross-tabulates the binary target against feature over train
// records with a 0/1 target, e.g. survival rate per passenger class. Rows
// follow the schema's distribution sort policy; records missing the feature
// are skipped.
func TargetRate(ds *dataset.Dataset, schema config.Schema, feature string) ([]RateRow, error) {
	if feature == "" {
		feature = schema.ColorFeature
	}
	if !hasColumn(ds, feature) {
		return nil, unknownColumn(feature)
	}

	code := isCode(schema, feature)
	var counter bucketCounter
	var positives []int
	for _, r := range ds.Records() {
		o := outcome(r, schema.TargetField)
		if o != outcomeNegative && o != outcomePositive {
			continue
		}
		key, ok := categoryKey(r, feature, code)
		if !ok {
			continue
		}
		i := counter.add(key, 1)
		if i == len(positives) {
			positives = append(positives, 0)
		}
		if o == outcomePositive {
			positives[i]++
		}
	}

	rows := make([]RateRow, len(counter.buckets))
	for i, b := range counter.buckets {
		rows[i] = RateRow{
			Value:     b.Value,
			Count:     b.Count,
			Positives: positives[i],
			Rate:      some(float64(positives[i]) / float64(b.Count) * 100),
		}
	}
	sortKeyed(rows, schema.DistributionSort, func(r RateRow) string { return r.Value }, func(r RateRow) int { return r.Count })
	return rows, nil
}

type targetOutcome int

const (
	outcomeNone targetOutcome = iota // test record, absent or null target
	outcomeNegative
	outcomePositive
	outcomeOther
)

func outcome(r *dataset.Record, field string) targetOutcome {
	if r.Origin != dataset.Train {
		return outcomeNone
	}
	v, ok := r.Get(field)
	if !ok {
		return outcomeNone
	}
	x, ok := v.Float()
	if !ok {
		return outcomeNone
	}
	switch x {
	case 0:
		return outcomeNegative
	case 1:
		return outcomePositive
	}
	return outcomeOther
}
