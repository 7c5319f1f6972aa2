package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prom.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.IncStageResult("publish", ResultSuccess)
	rec.IncStageResult("publish", ResultSuccess)
	rec.IncStageResult("generate", ResultFailed)
	rec.IncTaskOutcome(OutcomeDone)
	rec.IncUpload(ResultSuccess)
	rec.ObserveStageDuration("publish", 120*time.Millisecond)
	rec.ObserveTaskDuration(time.Second)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	assert.Equal(t, float64(2), testutil.ToFloat64(rec.stageResults.WithLabelValues("publish", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.stageResults.WithLabelValues("generate", "failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.taskOutcomes.WithLabelValues("done")))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.uploads.WithLabelValues("success")))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *PrometheusRecorder
	rec.IncStageResult("publish", ResultSuccess)
	rec.IncTaskOutcome(OutcomeFailed)
	rec.IncUpload(ResultFailed)
	rec.ObserveStageDuration("publish", time.Second)
	rec.ObserveTaskDuration(time.Second)
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = NopRecorder{}
	r.IncStageResult("validate", ResultWarning)
	r.ObserveTaskDuration(time.Millisecond)
}
