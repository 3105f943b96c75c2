// Package metrics exposes the Prometheus registry shared by the gateway.
// All metrics are defined in their respective packages (cache, upstream, api)
// and registered via promauto on the default registry.
//
// This package provides the scrape handler and the metric catalogue.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gatherer is the registry scraped by Handler. promauto registers every
// gateway metric on the default registerer, which this gathers.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - gateway_cache_hits_total{backend} (Counter): Cache hits by backend (memory, redis)
//   - gateway_cache_misses_total{backend} (Counter): Cache misses, expired entries included
//   - gateway_cache_writes_total{backend} (Counter): Entries written
//   - gateway_cache_entries{backend="memory"} (Gauge): Entries held by the memory store
//   - gateway_cache_errors_total{operation} (Counter): Redis backend errors (get, set, delete); undecodable entries count as get
//   - gateway_cache_coalesced_total (Counter): Misses served by another caller's load
//
// Upstream Metrics (pkg/upstream):
//   - gateway_upstream_requests_total{endpoint, status} (Counter): Requests by logical endpoint and HTTP status
//   - gateway_upstream_request_duration_seconds{endpoint} (Histogram): Attempt duration by endpoint
//   - gateway_upstream_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, decode)
//   - gateway_upstream_retries_total{error_class} (Counter): Retry attempts by error class
//   - gateway_upstream_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - gateway_upstream_retry_exhausted_total{error_class} (Counter): Requests that exhausted max attempts
//   - gateway_upstream_quota_remaining{entity} (Gauge): Provider quota left in the current window
//   - gateway_upstream_quota_low_total{entity} (Counter): Responses reporting a low quota
//
// HTTP Metrics (pkg/api):
//   - gateway_http_requests_total{route, status} (Counter): Inbound requests by route pattern and status
//   - gateway_http_request_duration_seconds{route} (Histogram): Inbound request duration
//   - gateway_http_cache_results_total{route, result} (Counter): Responses served from cache (hit) or loaded (miss)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(gateway_cache_hits_total[5m])) /
//   (sum(rate(gateway_cache_hits_total[5m])) + sum(rate(gateway_cache_misses_total[5m])))
//
//   # Quota Status
//   gateway_upstream_quota_remaining < 50
//
//   # Upstream Error Rate
//   rate(gateway_upstream_errors_total[5m])
//
//   # P95 Inbound Latency
//   histogram_quantile(0.95, rate(gateway_http_request_duration_seconds_bucket[5m]))
