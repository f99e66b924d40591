// Package metrics is the backend-agnostic metrics facade used by the profiler.
//
// Core code records through the package-level helpers below and never imports
// a vendor SDK. A process installs one Backend at startup with SetBackend; until
// then every call goes to a no-op backend, so library code and tests can record
// freely without configuration.
package metrics

import (
	"sync"
	"time"
)

// Labels are metric dimensions (step, status, ...).
type Labels map[string]string

// Backend receives metric observations.
//
// Concurrency:
//   - Implementations must be safe for concurrent use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

// Flusher is implemented by backends that buffer observations.
type Flusher interface {
	Flush() error
}

// Metric names recorded by the profiler.
const (
	StepTotal           = "profile_step_total"
	StepDurationSeconds = "profile_step_duration_seconds"
	ReportsTotal        = "profile_reports_total"
	RowsTotal           = "profile_rows_total"
)

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}

var (
	mu      sync.RWMutex
	current Backend = nopBackend{}
)

// SetBackend installs b as the process-wide backend. A nil b restores the
// no-op backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		current = nopBackend{}
		return
	}
	current = b
}

func backend() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// IncCounter forwards to the installed backend.
func IncCounter(name string, delta float64, labels Labels) {
	backend().IncCounter(name, delta, labels)
}

// ObserveHistogram forwards to the installed backend.
func ObserveHistogram(name string, value float64, labels Labels) {
	backend().ObserveHistogram(name, value, labels)
}

// Flush flushes the installed backend if it buffers; otherwise it is a no-op.
func Flush() error {
	if f, ok := backend().(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// RecordStep records one profile step outcome and its duration.
func RecordStep(step, status string, d time.Duration) {
	l := Labels{"step": step, "status": status}
	IncCounter(StepTotal, 1, l)
	ObserveHistogram(StepDurationSeconds, d.Seconds(), l)
}

// RecordReport records a finished (status "ok") or failed report and, on
// success, the number of rows the profiled table holds.
func RecordReport(status string, rows int64) {
	IncCounter(ReportsTotal, 1, Labels{"status": status})
	if status == "ok" && rows > 0 {
		IncCounter(RowsTotal, float64(rows), nil)
	}
}
