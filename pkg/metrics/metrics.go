// Package metrics declares the Prometheus collectors shared across the
// gateway, registered on the default registry and exposed by the API
// server's metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// ClockDecisions counts gateway decisions for clock actions, labeled by
// action (clock-in, clock-out) and decision (admitted, rejected,
// unauthorized, missing_location).
var ClockDecisions = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint: gochecknoglobals
	Name: "timegate_clock_decisions_total",
	Help: "Gateway decisions for clock actions by outcome.",
}, []string{"action", "decision"})

// MockFallbacks counts synthetic success responses substituted for upstream
// rejections under the compatibility mode. A non-zero value means the
// gateway is masking upstream failures, which should be a deliberate choice.
var MockFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint: gochecknoglobals
	Name: "timegate_mock_fallbacks_total",
	Help: "Synthetic success responses substituted for upstream rejections.",
}, []string{"action"})
