package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecordRequest(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/candidates", "GET", 200, 15*time.Millisecond)
	m.RecordRequest("/candidates", "GET", 200, 5*time.Millisecond)
	m.RecordError("/candidates/:id", "DELETE", "FORBIDDEN")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("/candidates", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorCount.WithLabelValues("/candidates/:id", "DELETE", "FORBIDDEN")))
}

func TestMetricsRecordPipelineEvent(t *testing.T) {
	m := NewMetrics()
	m.RecordPipelineEvent("candidate_status_changed", "Hired")
	m.RecordPipelineEvent("candidate_status_changed", "Hired")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pipelineEvents.WithLabelValues("candidate_status_changed", "Hired")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "INTERNAL_ERROR")
		m.RecordPipelineEvent("call_logged", "Phone")
	})
}
