// Package monitoring provides Prometheus metrics for the dashboard
// service: HTTP request metrics, tab-field aggregation counters,
// readiness latency, intent dispatch outcomes, report forwarding and
// bridge connection gauges.
//
// Metrics are registered via promauto and exposed through the standard
// promhttp handler on /metrics.
package monitoring
