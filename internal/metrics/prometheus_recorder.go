package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	stageDuration *prom.HistogramVec
	taskDuration  prom.Histogram
	stageResults  *prom.CounterVec
	taskOutcomes  *prom.CounterVec
	uploads       *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "taskrunner",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.taskDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "taskrunner",
			Name:      "task_duration_seconds",
			Help:      "Total task pipeline duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "taskrunner",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.taskOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "taskrunner",
			Name:      "task_outcomes_total",
			Help:      "Task outcomes by final status",
		}, []string{"outcome"})
		pr.uploads = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "taskrunner",
			Name:      "file_uploads_total",
			Help:      "File upload results by success/failure",
		}, []string{"result"})
		reg.MustRegister(pr.stageDuration, pr.taskDuration, pr.stageResults, pr.taskOutcomes, pr.uploads)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveTaskDuration(d time.Duration) {
	if p == nil || p.taskDuration == nil {
		return
	}
	p.taskDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncTaskOutcome(outcome TaskOutcomeLabel) {
	if p == nil || p.taskOutcomes == nil {
		return
	}
	p.taskOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncUpload(result ResultLabel) {
	if p == nil || p.uploads == nil {
		return
	}
	p.uploads.WithLabelValues(string(result)).Inc()
}
