package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the portal's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	// Admission attempts by outcome: admitted, invalid, duplicate, not_found, full, error
	Admissions *prometheus.CounterVec

	// Slot releases after a failed registration insert, by result
	SlotReleases *prometheus.CounterVec

	// Reconciliation passes per project, by whether the count had drifted
	Reconciles *prometheus.CounterVec

	StatusChanges *prometheus.CounterVec

	Notifications *prometheus.CounterVec

	HTTPDuration *prometheus.HistogramVec
}

// New creates a Metrics instance registered on its own registry together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Admissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ngo_registration_admissions_total",
			Help: "Registration admission attempts by outcome",
		}, []string{"outcome"}),

		SlotReleases: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ngo_slot_releases_total",
			Help: "Slot releases after failed registration inserts by result",
		}, []string{"result"}),

		Reconciles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ngo_reconcile_projects_total",
			Help: "Projects reconciled by whether the beneficiary count had drifted",
		}, []string{"drifted"}),

		StatusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ngo_registration_status_changes_total",
			Help: "Registration status changes by new status",
		}, []string{"status"}),

		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ngo_notifications_total",
			Help: "Decision notifications by kind and delivery result",
		}, []string{"kind", "result"}),

		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ngo_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "code"}),
	}
}

// Registry exposes the registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAdmission records one admission attempt.
func (m *Metrics) ObserveAdmission(outcome string) {
	if m != nil {
		m.Admissions.WithLabelValues(outcome).Inc()
	}
}

// ObserveSlotRelease records a compensating release.
func (m *Metrics) ObserveSlotRelease(ok bool) {
	if m != nil {
		m.SlotReleases.WithLabelValues(result(ok)).Inc()
	}
}

func (m *Metrics) ObserveReconcile(drifted bool) {
	if m != nil {
		label := "false"
		if drifted {
			label = "true"
		}
		m.Reconciles.WithLabelValues(label).Inc()
	}
}

func (m *Metrics) ObserveStatusChange(status string) {
	if m != nil {
		m.StatusChanges.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ObserveNotification(kind string, sent bool) {
	if m != nil {
		m.Notifications.WithLabelValues(kind, result(sent)).Inc()
	}
}

// ObserveHTTP records the latency of one request.
func (m *Metrics) ObserveHTTP(method, route, code string, d time.Duration) {
	if m != nil {
		m.HTTPDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
	}
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
