package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors shared by the domain modules.
type Metrics struct {
	ChangeEventsCreated prometheus.Counter
	StatusTransitions   *prometheus.CounterVec
	TagPolicyDenials    prometheus.Counter
	InspectionResults   prometheus.Counter
	ReportDuration      prometheus.Histogram
	AuthFailures        *prometheus.CounterVec
	AuditPublishErrors  prometheus.Counter
}

// New creates and registers all metrics on reg. Pass prometheus.DefaultRegisterer
// in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ChangeEventsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "changepoint_change_events_created_total",
			Help: "Total number of change events created",
		}),
		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "changepoint_status_transitions_total",
			Help: "Change event status transitions by source and target status",
		}, []string{"from", "to"}),
		TagPolicyDenials: f.NewCounter(prometheus.CounterOpts{
			Name: "changepoint_tag_policy_denials_total",
			Help: "Writes rejected because the required classification tag was missing",
		}),
		InspectionResults: f.NewCounter(prometheus.CounterOpts{
			Name: "changepoint_inspection_results_saved_total",
			Help: "Inspection result rows written through bulk save",
		}),
		ReportDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "changepoint_report_generation_seconds",
			Help:    "Time spent building the monthly workbook",
			Buckets: prometheus.DefBuckets,
		}),
		AuthFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "changepoint_auth_failures_total",
			Help: "Failed authentication attempts by reason",
		}, []string{"reason"}),
		AuditPublishErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "changepoint_audit_publish_errors_total",
			Help: "Audit events that could not be delivered",
		}),
	}
}

// NewNoop returns metrics registered on a private registry, for tests and
// tools that never expose /metrics.
func NewNoop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) IncChangeEventsCreated() {
	if m == nil {
		return
	}
	m.ChangeEventsCreated.Inc()
}

func (m *Metrics) IncStatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncTagPolicyDenials() {
	if m == nil {
		return
	}
	m.TagPolicyDenials.Inc()
}

func (m *Metrics) AddInspectionResults(n int) {
	if m == nil {
		return
	}
	m.InspectionResults.Add(float64(n))
}

func (m *Metrics) ObserveReportDuration(seconds float64) {
	if m == nil {
		return
	}
	m.ReportDuration.Observe(seconds)
}

func (m *Metrics) IncAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.AuthFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncAuditPublishErrors() {
	if m == nil {
		return
	}
	m.AuditPublishErrors.Inc()
}
