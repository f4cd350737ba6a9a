package dataset

import "fmt"

// Dataset is the merged, ordered sequence of train records followed by test
// records. It is immutable once built; views read it without locking.
type Dataset struct {
	records []*Record
	train   int
	test    int
}

// Merge concatenates train then test, preserving order within each side.
// It fails with ErrEmptyMerge when both are empty. Exactly one empty side is
// allowed. Merge is pure: it copies the slices and performs no I/O.
func Merge(train, test []*Record) (*Dataset, error) {
	if len(train) == 0 && len(test) == 0 {
		return nil, ErrEmptyMerge
	}
	for i, r := range train {
		if r == nil || r.Origin != Train {
			return nil, fmt.Errorf("dataset: merge: train record %d is not tagged train", i)
		}
	}
	for i, r := range test {
		if r == nil || r.Origin != Test {
			return nil, fmt.Errorf("dataset: merge: test record %d is not tagged test", i)
		}
	}

	recs := make([]*Record, 0, len(train)+len(test))
	recs = append(recs, train...)
	recs = append(recs, test...)

	ds := &Dataset{records: recs, train: len(train), test: len(test)}
	if ds.train+ds.test != len(ds.records) {
		return nil, fmt.Errorf("dataset: merge: count mismatch train=%d test=%d len=%d", ds.train, ds.test, len(ds.records))
	}
	return ds, nil
}

// Len returns the total number of records.
func (d *Dataset) Len() int { return len(d.records) }

// TrainCount returns the number of train records.
func (d *Dataset) TrainCount() int { return d.train }

// TestCount returns the number of test records.
func (d *Dataset) TestCount() int { return d.test }

// Records returns the merged records in order. Callers must not modify the
// slice or the records.
func (d *Dataset) Records() []*Record { return d.records }

// At returns the i-th record.
func (d *Dataset) At(i int) *Record { return d.records[i] }

// Columns returns the distinct field names across all records in first-seen
// order.
func (d *Dataset) Columns() []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, r := range d.records {
		for _, k := range r.keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	return cols
}
