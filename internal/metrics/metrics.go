// SPDX-License-Identifier: AGPL-3.0-only
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics for the publishing pipeline. A nil
// *Collector is valid and records nothing, which keeps tests free of global
// registry collisions.
type Collector struct {
	postAttempts    *prometheus.CounterVec
	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
}

func NewCollector() *Collector {
	c := &Collector{
		postAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulsebot_post_attempts_total",
				Help: "Total publish attempts by category and outcome",
			},
			[]string{"category", "outcome"},
		),
		providerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulsebot_provider_calls_total",
				Help: "Total external provider calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		providerLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pulsebot_provider_call_duration_seconds",
				Help:    "External provider call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
	}

	prometheus.MustRegister(c.postAttempts)
	prometheus.MustRegister(c.providerCalls)
	prometheus.MustRegister(c.providerLatency)

	return c
}

func (c *Collector) RecordPostAttempt(category string, success bool) {
	if c == nil {
		return
	}
	c.postAttempts.WithLabelValues(category, outcomeLabel(success)).Inc()
}

func (c *Collector) RecordProviderCall(provider string, success bool, seconds float64) {
	if c == nil {
		return
	}
	c.providerCalls.WithLabelValues(provider, outcomeLabel(success)).Inc()
	c.providerLatency.WithLabelValues(provider).Observe(seconds)
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Handler exposes the default registry for the /metrics route.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
