// Package metrics exposes the Prometheus registry used by the rbx client.
// All metrics are defined in their respective packages (egress, client,
// cache, pagination, cooldown) to maintain modularity and avoid circular
// dependencies.
//
// This package provides the scrape handler and documents every series.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the rbx client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the registry read by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the HTTP handler serving all registered series.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Egress Metrics (pkg/egress):
//   - rbx_egress_descriptors (Gauge): Configured egress paths (0 = direct mode)
//   - rbx_egress_cursor (Gauge): Index of the egress path used next
//   - rbx_egress_failures_total{egress} (Counter): Transport failures by redacted egress
//   - rbx_egress_rotations_total (Counter): Failovers to the next egress path
//
// Request Metrics (pkg/client):
//   - rbx_requests_total{host, status} (Counter): Attempts by API host and HTTP status
//     ("transport_error" when no response arrived)
//   - rbx_request_duration_seconds{host} (Histogram): Request duration including failover
//   - rbx_errors_total{class} (Counter): Classified errors returned to callers
//   - rbx_egress_attempts_total{outcome} (Counter): Attempts by outcome
//     (success, application_error, transport_error, cancelled)
//   - rbx_egress_exhausted_total{class} (Counter): Requests that failed on every attempted path
//
// Cache Metrics (pkg/cache):
//   - rbx_cache_hits_total{cache} (Counter): Fresh cache hits
//   - rbx_cache_misses_total{cache} (Counter): Misses, expired entries included
//   - rbx_cache_expired_total{cache} (Counter): Entries purged on lookup after their TTL
//   - rbx_cache_entries{cache} (Gauge): Entries currently held
//
// Pagination Metrics (pkg/pagination):
//   - rbx_pagination_pages_total (Counter): Cursor pages fetched
//   - rbx_pagination_truncated_total (Counter): Cursor walks stopped at the page ceiling
//
// Cooldown Metrics (pkg/cooldown):
//   - rbx_cooldown_blocks_total (Counter): Requests rejected while the caller cooled down
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(rbx_cache_hits_total[5m])) /
//   (sum(rate(rbx_cache_hits_total[5m])) + sum(rate(rbx_cache_misses_total[5m])))
//
//   # Failover Rate
//   rate(rbx_egress_rotations_total[5m])
//
//   # Failing Egress Paths
//   topk(3, increase(rbx_egress_failures_total[15m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(rbx_request_duration_seconds_bucket[5m]))
//
//   # Exhaustion Rate
//   sum(rate(rbx_egress_exhausted_total[5m]))
