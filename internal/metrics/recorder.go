// Package metrics defines observability hooks for build-and-discover runs.
package metrics

import "time"

// OutcomeLabel enumerates run outcome categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess     OutcomeLabel = "success"      // build ok, path extracted
	OutcomeBuildFailed OutcomeLabel = "build_failed" // cargo exited non-zero
	OutcomeNoPath      OutcomeLabel = "no_path"      // build ok, nothing extracted
	OutcomeError       OutcomeLabel = "error"        // tool missing, spawn or parse failure
)

// Recorder defines observability hooks for run metrics. Implementations may
// forward to Prometheus etc. All methods must be safe on the NoopRecorder
// (allowing optional injection).
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncRunOutcome(outcome OutcomeLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncRunOutcome(OutcomeLabel)         {}
