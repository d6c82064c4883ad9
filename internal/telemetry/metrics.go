// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package telemetry holds the Prometheus collectors shared by the client,
// the cache and the pollers.
package telemetry

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequests counts backend requests by method, endpoint template and status class.
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trendscope",
		Name:      "api_requests_total",
		Help:      "Backend requests by method, endpoint and status class.",
	}, []string{"method", "endpoint", "status"})

	// APIDuration observes backend request latency.
	APIDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "trendscope",
		Name:      "api_request_duration_seconds",
		Help:      "Backend request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	// CacheLookups counts response cache lookups by resource and result
	// (hit, miss, shared).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trendscope",
		Name:      "cache_lookups_total",
		Help:      "Response cache lookups by resource and result.",
	}, []string{"resource", "result"})

	// CacheInvalidations counts explicit invalidations by resource.
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trendscope",
		Name:      "cache_invalidations_total",
		Help:      "Explicit cache invalidations by resource.",
	}, []string{"resource"})

	// PollTicks counts live-update refetches by resource.
	PollTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trendscope",
		Name:      "poll_ticks_total",
		Help:      "Live-update refetches by resource.",
	}, []string{"resource"})
)

// StatusClass buckets an HTTP status into "2xx", "4xx" and so on.
// Zero means the request never got a response.
func StatusClass(code int) string {
	if code <= 0 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
