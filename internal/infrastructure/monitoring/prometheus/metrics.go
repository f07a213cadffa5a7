package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

const namespace = "safeharbor"

var httpDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics holds every metric the service exposes. The deadline gauges are
// refreshed by the background scan so the dashboard tracks compliance
// without hammering the reports table.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ReportsSubmittedTotal *prometheus.CounterVec
	ReportsByStatus       *prometheus.GaugeVec

	AcknowledgmentOverdue *prometheus.GaugeVec
	ResolutionOverdue     *prometheus.GaugeVec
	AcknowledgmentDueSoon *prometheus.GaugeVec
	ResolutionDueSoon     *prometheus.GaugeVec

	SeverityEstimatesTotal *prometheus.CounterVec
	EventsPublishedTotal   *prometheus.CounterVec
	ScanDuration           prometheus.Histogram
}

// NewMetrics registers all metrics on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration",
			Buckets:   httpDurationBuckets,
		}, []string{"method", "path"}),

		ReportsSubmittedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "Reports submitted through the public intake",
		}, []string{"tenant", "anonymous"}),

		ReportsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reports_by_status",
			Help:      "Open reports per tenant and lifecycle status",
		}, []string{"tenant", "status"}),

		AcknowledgmentOverdue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "acknowledgment_overdue",
			Help:      "Reports past the 7-day acknowledgment deadline",
		}, []string{"tenant"}),

		ResolutionOverdue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resolution_overdue",
			Help:      "Reports past the 90-day resolution deadline",
		}, []string{"tenant"}),

		AcknowledgmentDueSoon: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "acknowledgment_due_soon",
			Help:      "Reports within the acknowledgment due-soon window",
		}, []string{"tenant"}),

		ResolutionDueSoon: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resolution_due_soon",
			Help:      "Reports within the resolution due-soon window",
		}, []string{"tenant"}),

		SeverityEstimatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "severity_estimates_total",
			Help:      "Severity estimation attempts by outcome",
		}, []string{"outcome"}),

		EventsPublishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events published to the event stream",
		}, []string{"event_type", "result"}),

		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "deadline_scan_duration_seconds",
			Help:      "Duration of the background deadline scan",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReportsSubmittedTotal,
		m.ReportsByStatus,
		m.AcknowledgmentOverdue,
		m.ResolutionOverdue,
		m.AcknowledgmentDueSoon,
		m.ResolutionDueSoon,
		m.SeverityEstimatesTotal,
		m.EventsPublishedTotal,
		m.ScanDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// SetTenantStats projects one tenant's aggregated deadline counters onto the
// compliance gauges.
func (m *Metrics) SetTenantStats(tenantID common.TenantID, stats report.TenantStats) {
	tenant := string(tenantID)
	m.AcknowledgmentOverdue.WithLabelValues(tenant).Set(float64(stats.InitialOverdue))
	m.ResolutionOverdue.WithLabelValues(tenant).Set(float64(stats.FinalOverdue))
	m.AcknowledgmentDueSoon.WithLabelValues(tenant).Set(float64(stats.InitialDueSoon))
	m.ResolutionDueSoon.WithLabelValues(tenant).Set(float64(stats.FinalDueSoon))
}

//Personal.AI order the ending
