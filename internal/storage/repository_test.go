package storage

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"eda/internal/config"
	"eda/internal/dataset"
	"eda/internal/metrics"
)

// fakeRepo records every call so tests can assert on DDL and inserted rows.
type fakeRepo struct {
	mu      sync.Mutex
	execs   []string
	columns []string
	rows    [][]any
	copyErr error
	closed  bool
}

func (f *fakeRepo) CopyFrom(_ context.Context, columns []string, rows [][]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	f.columns = columns
	for _, r := range rows {
		f.rows = append(f.rows, append([]any(nil), r...))
	}
	return int64(len(rows)), nil
}

func (f *fakeRepo) Exec(_ context.Context, sql string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	return nil
}

func (f *fakeRepo) Close() { f.closed = true }

type fakeDialect struct{}

func (fakeDialect) CreateTableSQL(table string, cols []Column) (string, error) {
	if err := ValidateColumns(table, cols); err != nil {
		return "", err
	}
	return "CREATE " + table, nil
}

func TestRegisterAndNew(t *testing.T) {
	want := &fakeRepo{}
	Register("fake-test", func(_ context.Context, cfg Config) (Repository, error) {
		if cfg.Table != "snap" {
			t.Fatalf("table=%q want snap", cfg.Table)
		}
		return want, nil
	})

	got, err := New(context.Background(), Config{Kind: "fake-test", Table: "snap"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got != want {
		t.Fatalf("New returned a different repository")
	}

	found := false
	for _, k := range ListKinds() {
		if k == "fake-test" {
			found = true
		}
	}
	if !found {
		t.Fatalf("ListKinds() missing fake-test: %v", ListKinds())
	}
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	if err == nil || err.Error() != "unsupported storage.kind=does-not-exist" {
		t.Fatalf("err=%v", err)
	}
}

func TestDialectFor(t *testing.T) {
	RegisterDialect("fake-test", fakeDialect{})
	if _, err := DialectFor("fake-test"); err != nil {
		t.Fatalf("DialectFor: %v", err)
	}
	if _, err := DialectFor("nope"); err == nil {
		t.Fatalf("expected error for unregistered dialect")
	}
}

func TestValidateColumns(t *testing.T) {
	cases := []struct {
		name    string
		table   string
		cols    []Column
		wantErr bool
	}{
		{"ok", "t", []Column{{Name: "a"}}, false},
		{"no table", "", []Column{{Name: "a"}}, true},
		{"no columns", "t", nil, true},
		{"blank column", "t", []Column{{Name: "a"}, {Name: ""}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateColumns(tc.table, tc.cols); (err != nil) != tc.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func feed(rows ...[]any) <-chan []any {
	ch := make(chan []any, len(rows))
	for _, r := range rows {
		ch <- r
	}
	close(ch)
	return ch
}

func TestLoadBatches(t *testing.T) {
	var sizes []int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		sizes = append(sizes, len(rows))
		return int64(len(rows)), nil
	}
	in := feed([]any{1}, []any{2}, []any{3}, []any{4}, []any{5})

	total, batches, err := LoadBatches(context.Background(), []string{"a"}, in, 2, copyFn)
	if err != nil {
		t.Fatalf("LoadBatches: %v", err)
	}
	if total != 5 || batches != 3 {
		t.Fatalf("total=%d batches=%d want 5 3", total, batches)
	}
	if !reflect.DeepEqual(sizes, []int{2, 2, 1}) {
		t.Fatalf("batch sizes=%v", sizes)
	}
}

func TestLoadBatches_Errors(t *testing.T) {
	ok := func(context.Context, []string, [][]any) (int64, error) { return 0, nil }
	if _, _, err := LoadBatches(context.Background(), nil, feed(), 0, ok); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
	if _, _, err := LoadBatches(context.Background(), nil, feed(), 1, nil); err == nil {
		t.Fatalf("expected error for nil copyFn")
	}

	boom := errors.New("boom")
	failing := func(context.Context, []string, [][]any) (int64, error) { return 0, boom }
	if _, _, err := LoadBatches(context.Background(), nil, feed([]any{1}), 1, failing); !errors.Is(err, boom) {
		t.Fatalf("err=%v want boom", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := LoadBatches(ctx, nil, make(chan []any), 1, ok); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
}

func snapshotDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	c := dataset.NewCoercer(config.DefaultSchema())
	train := []*dataset.Record{
		c.Coerce(dataset.RawRecord{{Name: "PassengerId", Value: "1"}, {Name: "Survived", Value: "0"}, {Name: "Age", Value: "22"}, {Name: "Sex", Value: "male"}}, dataset.Train),
		c.Coerce(dataset.RawRecord{{Name: "PassengerId", Value: "2"}, {Name: "Survived", Value: "1"}, {Name: "Age", Value: ""}, {Name: "Sex", Value: "female"}}, dataset.Train),
	}
	test := []*dataset.Record{
		c.Coerce(dataset.RawRecord{{Name: "PassengerId", Value: "3"}, {Name: "Age", Value: "40"}}, dataset.Test),
	}
	ds, err := dataset.Merge(train, test)
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestSnapshotColumns(t *testing.T) {
	cols := SnapshotColumns(snapshotDataset(t), config.DefaultSchema())
	want := []Column{
		{Name: "PassengerId", Numeric: true},
		{Name: "Survived", Numeric: true},
		{Name: "Age", Numeric: true},
		{Name: "Sex"},
		{Name: "dataset"},
	}
	if !reflect.DeepEqual(cols, want) {
		t.Fatalf("columns=%+v want %+v", cols, want)
	}
}

func TestWriteSnapshot(t *testing.T) {
	repo := &fakeRepo{}
	n, err := WriteSnapshot(context.Background(), repo, fakeDialect{}, snapshotDataset(t), config.DefaultSchema(), SnapshotOptions{Table: "snap", BatchSize: 2})
	if err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if n != 3 {
		t.Fatalf("inserted=%d want 3", n)
	}
	if len(repo.execs) != 1 || repo.execs[0] != "CREATE snap" {
		t.Fatalf("execs=%v", repo.execs)
	}

	want := [][]any{
		{1.0, 0.0, 22.0, "male", "train"},
		{2.0, 1.0, nil, "female", "train"},
		{3.0, nil, 40.0, nil, "test"},
	}
	if !reflect.DeepEqual(repo.rows, want) {
		t.Fatalf("rows=%v want %v", repo.rows, want)
	}
}

func TestWriteSnapshot_CopyError(t *testing.T) {
	boom := errors.New("disk full")
	repo := &fakeRepo{copyErr: boom}
	_, err := WriteSnapshot(context.Background(), repo, fakeDialect{}, snapshotDataset(t), config.DefaultSchema(), SnapshotOptions{Table: "snap", BatchSize: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v want disk full", err)
	}
}

// labelRecorder captures the job label of every metric.
type labelRecorder struct {
	mu   sync.Mutex
	jobs map[string]string // metric name → job
}

func (l *labelRecorder) IncCounter(name string, _ float64, labels metrics.Labels) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jobs[name] = labels["job"]
}

func (l *labelRecorder) ObserveHistogram(name string, _ float64, labels metrics.Labels) {
	l.IncCounter(name, 0, labels)
}

func (l *labelRecorder) Flush() error { return nil }

func TestWriteSnapshot_JobLabel(t *testing.T) {
	rec := &labelRecorder{jobs: map[string]string{}}
	metrics.SetBackend(rec)
	t.Cleanup(func() { metrics.SetBackend(nopMetrics{}) })

	opt := SnapshotOptions{Table: "snap", BatchSize: 2, Job: "nightly"}
	if _, err := WriteSnapshot(context.Background(), &fakeRepo{}, fakeDialect{}, snapshotDataset(t), config.DefaultSchema(), opt); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	for _, name := range []string{metrics.StepTotal, metrics.StepDurationSeconds, metrics.RecordsTotal, metrics.BatchesTotal} {
		if got := rec.jobs[name]; got != "nightly" {
			t.Fatalf("%s job=%q want nightly", name, got)
		}
	}
}

type nopMetrics struct{}

func (nopMetrics) IncCounter(string, float64, metrics.Labels)       {}
func (nopMetrics) ObserveHistogram(string, float64, metrics.Labels) {}
func (nopMetrics) Flush() error                                     { return nil }
