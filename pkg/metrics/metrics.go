// Package metrics exposes the Prometheus registry the fetcher registers into
// and an HTTP handler for scraping it. The metrics themselves are declared in
// the packages that record them (client, cache, ratelimit).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all fetcher metrics are created in via promauto.
var Registry = prometheus.DefaultRegisterer

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - github_fetcher_requests_total{operation, status} (Counter): round trips by operation and outcome
//   - github_fetcher_request_duration_seconds{operation} (Histogram): round-trip latency
//   - github_fetcher_errors_total{kind} (Counter): classified errors by kind
//   - github_fetcher_pages_fetched_total{operation} (Counter): pages walked by PageFetch
//
// Cache Metrics (pkg/cache):
//   - github_fetcher_cache_hits_total (Counter): responses served from Redis
//   - github_fetcher_cache_misses_total (Counter): lookups that went to GitHub
//   - github_fetcher_cache_errors_total{operation} (Counter): Redis failures by operation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - github_fetcher_rate_limit_remaining{resource} (Gauge): points left in the current window
//   - github_fetcher_rate_limit_low_total{resource} (Counter): responses seen below the warning threshold
//
// Example Prometheus Queries:
//
//   # Error ratio by kind
//   sum by (kind) (rate(github_fetcher_errors_total[5m]))
//
//   # P95 latency per operation
//   histogram_quantile(0.95, sum by (operation, le) (rate(github_fetcher_request_duration_seconds_bucket[5m])))
//
//   # Rate limit headroom
//   github_fetcher_rate_limit_remaining{resource="graphql"} < 500
