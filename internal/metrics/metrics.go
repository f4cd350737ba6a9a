// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from loads, exports and snapshot writes.
//
// The package exposes a narrow Backend interface (counters and durations)
// and a global, pluggable backend that defaults to a no-op implementation,
// so metrics are always safe to call even when nothing is configured.
// Concrete systems live in subpackages (prompush, datadog).
package metrics

import "time"

// Metric names shared by all backends.
const (
	StepTotal           = "eda_step_total"
	StepDurationSeconds = "eda_step_duration_seconds"
	RecordsTotal        = "eda_records_total"
	BatchesTotal        = "eda_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing
// backend. Call it once at startup, before any load runs.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of step and records its duration, with
// status "success" or "failure" depending on err.
//
// Steps emitted today: parse_train, parse_test, merge, load, export_csv,
// export_summary, export_xlsx, snapshot.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRow increments the record counter for job and kind. Kinds in use:
// "train", "test" (parsed rows per origin) and "inserted" (snapshot rows).
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments the snapshot batch counter for job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{
		"job": job,
	})
}
