package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the dashboard service.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Aggregation metrics
	FieldUpdates       *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	SnapshotsReady     prometheus.Counter
	ReadyLatency       prometheus.Histogram

	// Intent metrics
	IntentsDispatched *prometheus.CounterVec

	// Report metrics
	ReportsForwarded *prometheus.CounterVec

	// Tab session metrics
	TabsActive prometheus.Gauge
	TabsTotal  prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		FieldUpdates: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_field_updates_total",
				Help: "Total number of applied tab field updates",
			},
			[]string{"field"},
		),
		ValidationFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_validation_failures_total",
				Help: "Total number of inbound payloads dropped by validation",
			},
			[]string{"field"},
		),
		SnapshotsReady: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "dashboard_snapshots_ready_total",
				Help: "Total number of tab sessions that reached readiness",
			},
		),
		ReadyLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dashboard_ready_latency_seconds",
				Help:    "Time from session start to first complete snapshot",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),

		IntentsDispatched: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_intents_dispatched_total",
				Help: "Total number of outbound intents by kind and status",
			},
			[]string{"kind", "status"},
		),

		ReportsForwarded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_reports_forwarded_total",
				Help: "Total number of breakage reports forwarded to collection",
			},
			[]string{"status"},
		),

		TabsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "dashboard_tabs_active",
				Help: "Number of active tab sessions",
			},
		),
		TabsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "dashboard_tabs_total",
				Help: "Total number of tab sessions created",
			},
		),

		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "dashboard_ws_connections",
				Help: "Number of active bridge WebSocket connections",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_ws_messages_total",
				Help: "Total number of bridge WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "dashboard_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}

	go m.updateUptime()

	return m
}

func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordFieldUpdate records an applied tab field update.
func (m *Metrics) RecordFieldUpdate(field string) {
	m.FieldUpdates.WithLabelValues(field).Inc()
}

// RecordValidationFailure records a dropped inbound payload.
func (m *Metrics) RecordValidationFailure(field string) {
	m.ValidationFailures.WithLabelValues(field).Inc()
}

// RecordSnapshotReady records a session reaching readiness.
func (m *Metrics) RecordSnapshotReady(latency time.Duration) {
	m.SnapshotsReady.Inc()
	m.ReadyLatency.Observe(latency.Seconds())
}

// RecordIntent records an outbound intent dispatch.
func (m *Metrics) RecordIntent(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.IntentsDispatched.WithLabelValues(kind, status).Inc()
}

// RecordReportForward records a breakage-report forwarding attempt.
func (m *Metrics) RecordReportForward(status string) {
	m.ReportsForwarded.WithLabelValues(status).Inc()
}

// SetTabsActive sets the number of active tab sessions.
func (m *Metrics) SetTabsActive(count int) {
	m.TabsActive.Set(float64(count))
}

// IncTabsTotal increments the tab session counter.
func (m *Metrics) IncTabsTotal() {
	m.TabsTotal.Inc()
}

// IncWSConnections increments bridge connections.
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements bridge connections.
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// RecordWSMessage records a bridge WebSocket message.
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}
