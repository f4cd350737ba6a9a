package analysis

import (
	"sort"
	"strconv"
	"strings"

	"eda/internal/config"
	"eda/internal/dataset"
)

// Bucket is one distinct categorical value and its frequency.
type Bucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Distribution is the frequency table of one categorical feature. Missing
// values are counted separately and never form a bucket.
type Distribution struct {
	Feature string   `json:"feature"`
	Buckets []Bucket `json:"buckets"`
	Missing int      `json:"missing"`
	Total   int      `json:"total"`
}

// CategoricalDistribution groups all records by the value of feature. Code
// features group by canonical string value (2 and "2" both count as "2");
// other features keep their trimmed raw text, so "007" and "7" stay apart.
// An empty feature selects the schema's color feature.
// Buckets are ordered by the schema's distribution sort policy.
func CategoricalDistribution(ds *dataset.Dataset, schema config.Schema, feature string) (Distribution, error) {
	if feature == "" {
		feature = schema.ColorFeature
	}
	if !hasColumn(ds, feature) {
		return Distribution{}, unknownColumn(feature)
	}

	d := Distribution{Feature: feature, Total: ds.Len()}
	code := isCode(schema, feature)
	var counter bucketCounter
	for _, r := range ds.Records() {
		key, ok := categoryKey(r, feature, code)
		if !ok {
			d.Missing++
			continue
		}
		counter.add(key, 1)
	}
	d.Buckets = counter.buckets
	SortBuckets(d.Buckets, schema.DistributionSort)
	return d, nil
}

// categoryKey returns the grouping key for feature on r, or false when the
// value is missing. Code features and stored numbers use the canonical code
// form; text keeps its raw value, trimmed.
func categoryKey(r *dataset.Record, feature string, code bool) (string, bool) {
	v, ok := r.Get(feature)
	if !ok || v.IsMissing() {
		return "", false
	}
	if code || v.Kind() == dataset.KindNumber {
		return dataset.CoerceCategoricalCode(v).String(), true
	}
	return strings.TrimSpace(v.String()), true
}

func isCode(schema config.Schema, feature string) bool {
	return schema.Roles()[feature] == config.RoleCategoricalCode
}

func hasColumn(ds *dataset.Dataset, name string) bool {
	for _, c := range ds.Columns() {
		if c == name {
			return true
		}
	}
	return false
}

// bucketCounter accumulates counts keyed by value, keeping first-seen order.
type bucketCounter struct {
	index   map[string]int
	buckets []Bucket
}

func (c *bucketCounter) add(key string, n int) int {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	i, ok := c.index[key]
	if !ok {
		i = len(c.buckets)
		c.index[key] = i
		c.buckets = append(c.buckets, Bucket{Value: key})
	}
	c.buckets[i].Count += n
	return i
}

// SortBuckets orders buckets in place by policy:
//
//   - auto: ascending numeric when every value is an integer, else insertion
//   - insertion: first-seen order
//   - numeric: numeric values ascending, then non-numeric in insertion order
//   - alpha: ascending string order
//   - count: descending count, ties in insertion order
//
// Unknown policies behave like auto.
func SortBuckets(b []Bucket, policy string) {
	sortKeyed(b, policy, func(x Bucket) string { return x.Value }, func(x Bucket) int { return x.Count })
}

func sortKeyed[T any](items []T, policy string, value func(T) string, count func(T) int) {
	switch policy {
	case config.SortInsertion:
		return
	case config.SortNumeric:
		sort.SliceStable(items, func(i, j int) bool {
			a, aok := parseKey(value(items[i]))
			b, bok := parseKey(value(items[j]))
			if aok && bok {
				return a < b
			}
			return aok && !bok
		})
	case config.SortAlpha:
		sort.SliceStable(items, func(i, j int) bool { return value(items[i]) < value(items[j]) })
	case config.SortCount:
		sort.SliceStable(items, func(i, j int) bool { return count(items[i]) > count(items[j]) })
	default:
		keys := make(map[string]int64, len(items))
		for _, it := range items {
			n, err := strconv.ParseInt(strings.TrimSpace(value(it)), 10, 64)
			if err != nil {
				return
			}
			keys[value(it)] = n
		}
		sort.SliceStable(items, func(i, j int) bool { return keys[value(items[i])] < keys[value(items[j])] })
	}
}

func parseKey(s string) (float64, bool) {
	return dataset.CoerceNumeric(s).Float()
}
