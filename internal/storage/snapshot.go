package storage

import (
	"context"
	"fmt"
	"time"

	"eda/internal/config"
	"eda/internal/dataset"
	"eda/internal/metrics"
)

// DefaultBatchSize is used when SnapshotOptions.BatchSize is not positive.
const DefaultBatchSize = 500

// SnapshotOptions configures WriteSnapshot.
type SnapshotOptions struct {
	Table     string
	BatchSize int
	// Job labels metrics. Defaults to "eda".
	Job string
}

// SnapshotColumns maps the dataset's column inventory to table columns.
// Columns the schema coerces to numbers (numeric features, identifier,
// target) are numeric; everything else, including the origin tag, is text.
func SnapshotColumns(ds *dataset.Dataset, schema config.Schema) []Column {
	names := ds.Columns()
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n, Numeric: schema.IsNumericColumn(n)}
	}
	return cols
}

// WriteSnapshot creates opt.Table (if needed) with dialect and inserts every
// record of ds through repo in batches. Absent and null fields are written
// as NULL. It returns the number of inserted rows.
func WriteSnapshot(
	ctx context.Context,
	repo Repository,
	dialect Dialect,
	ds *dataset.Dataset,
	schema config.Schema,
	opt SnapshotOptions,
) (n int64, err error) {
	if opt.Job == "" {
		opt.Job = "eda"
	}
	start := time.Now()
	defer func() { metrics.RecordStep(opt.Job, "snapshot", err, time.Since(start)) }()

	table, batchSize := opt.Table, opt.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	cols := SnapshotColumns(ds, schema)
	ddl, err := dialect.CreateTableSQL(table, cols)
	if err != nil {
		return 0, fmt.Errorf("storage: snapshot ddl: %w", err)
	}
	if err := repo.Exec(ctx, ddl); err != nil {
		return 0, fmt.Errorf("storage: snapshot create %s: %w", table, err)
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rows := make(chan []any, batchSize)
	go func() {
		defer close(rows)
		for _, r := range ds.Records() {
			select {
			case rows <- rowValues(r, cols):
			case <-ctx.Done():
				return
			}
		}
	}()

	n, batches, err := LoadBatches(ctx, names, rows, batchSize, repo.CopyFrom)
	metrics.RecordRow(opt.Job, "inserted", n)
	metrics.RecordBatches(opt.Job, batches)
	if err != nil {
		return n, fmt.Errorf("storage: snapshot %s: %w", table, err)
	}
	return n, nil
}

// rowValues aligns r to cols: float64 for numeric columns, string for text,
// nil for absent or null values.
func rowValues(r *dataset.Record, cols []Column) []any {
	row := make([]any, len(cols))
	for i, c := range cols {
		v, ok := r.Get(c.Name)
		if !ok || v.IsNull() {
			continue
		}
		if c.Numeric {
			if f, ok := v.Float(); ok {
				row[i] = f
			}
			continue
		}
		row[i] = v.String()
	}
	return row
}
