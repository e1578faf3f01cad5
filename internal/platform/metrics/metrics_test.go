package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncChangeEventsCreated()
	m.IncStatusTransition("DRAFT", "SUBMITTED")
	m.IncStatusTransition("DRAFT", "SUBMITTED")
	m.AddInspectionResults(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChangeEventsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StatusTransitions.WithLabelValues("DRAFT", "SUBMITTED")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.InspectionResults))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncChangeEventsCreated()
		m.IncTagPolicyDenials()
		m.ObserveReportDuration(1)
	})
}
