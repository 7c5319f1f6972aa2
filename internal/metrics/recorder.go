// Package metrics records pipeline stage outcomes for Prometheus scraping.
package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFailed  ResultLabel = "failed"
)

// TaskOutcomeLabel enumerates terminal task outcomes.
type TaskOutcomeLabel string

const (
	OutcomeDone           TaskOutcomeLabel = "done"
	OutcomeDoneWithErrors TaskOutcomeLabel = "done_with_errors"
	OutcomeFailed         TaskOutcomeLabel = "failed"
	OutcomeRejected       TaskOutcomeLabel = "rejected"
)

// Recorder abstracts metric emission so the pipeline stays testable without a
// registry. A nil *PrometheusRecorder is a valid no-op Recorder.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveTaskDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncTaskOutcome(outcome TaskOutcomeLabel)
	IncUpload(result ResultLabel)
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func (NopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NopRecorder) ObserveTaskDuration(time.Duration)          {}
func (NopRecorder) IncStageResult(string, ResultLabel)         {}
func (NopRecorder) IncTaskOutcome(TaskOutcomeLabel)            {}
func (NopRecorder) IncUpload(ResultLabel)                      {}
