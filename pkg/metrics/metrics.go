// Package metrics provides centralized Prometheus metrics access for the
// Canvas client. All metrics are defined in their respective packages
// (client, fanout, quota, store) to maintain modularity and avoid circular
// dependencies.
//
// A command-line run is too short-lived to be scraped, so WriteTextfile
// dumps the registry in the text exposition format, suitable for the node
// exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the Canvas client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer paired with Registry.
var Gatherer = prometheus.DefaultGatherer

// WriteTextfile writes every registered metric to path.
func WriteTextfile(path string) error {
	if path == "" {
		return fmt.Errorf("metrics file path is required")
	}
	if err := prometheus.WriteToTextfile(path, Gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - canvas_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - canvas_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - canvas_errors_total{kind} (Counter): Failures by kind (request_failed, deserialize_failed, server_error)
//
// Fan-out Metrics (pkg/fanout):
//   - canvas_fanout_branches_total{result} (Counter): Branches by result (ok, error, cancelled)
//   - canvas_fanout_duration_seconds (Histogram): Duration of complete fan-out operations
//
// Quota Metrics (pkg/quota):
//   - canvas_quota_remaining (Gauge): Remaining quota from X-Rate-Limit-Remaining
//   - canvas_request_cost (Histogram): Cost from X-Request-Cost
//   - canvas_quota_low_total (Counter): Responses below the warning threshold
//
// Export Metrics (pkg/store):
//   - canvas_export_writes_total{kind} (Counter): Records written by kind (course, run)
//   - canvas_export_errors_total{operation} (Counter): Redis operation errors
//
// Endpoint labels replace numeric path segments with ":id", e.g.
// /api/v1/courses/:id/enrollments.
//
// Example Prometheus Queries:
//
//   # Server error rate
//   rate(canvas_errors_total{kind="server_error"}[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(canvas_request_duration_seconds_bucket[5m]))
//
//   # Quota headroom
//   canvas_quota_remaining < 100
