// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VendorLookups counts barcode vendor lookup attempts by vendor and
	// outcome (hit, miss, error).
	VendorLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shelfline",
		Subsystem: "lookup",
		Name:      "vendor_attempts_total",
		Help:      "Barcode vendor lookup attempts by vendor and outcome.",
	}, []string{"vendor", "outcome"})

	// Resolutions counts completed resolution pipeline runs by outcome
	// (added, already_in_library, needs_manual_entry, error).
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shelfline",
		Subsystem: "resolver",
		Name:      "resolutions_total",
		Help:      "Barcode resolution pipeline runs by outcome.",
	}, []string{"outcome"})

	// BGGRequests counts BoardGameGeek API calls by operation and status
	// (ok, not_found, error).
	BGGRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shelfline",
		Subsystem: "bgg",
		Name:      "requests_total",
		Help:      "BoardGameGeek API requests by operation and status.",
	}, []string{"op", "status"})

	// HTTPDuration observes inbound request latency by route and method.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shelfline",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Inbound HTTP request duration.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)
