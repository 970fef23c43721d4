// Package metrics holds the Prometheus instruments used across the portal.
// All collectors are registered with the global registry, so mounting
// promhttp.Handler on /metrics is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "portal_active_sessions",
			Help: "Number of browser sessions currently held in memory.",
		})

	SessionEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_session_evictions_total",
			Help: "Sessions dropped by the idle sweeper.",
		})

	UpstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_upstream_calls_total",
			Help: "Remote API calls by operation and outcome (ok, rejected, unauthorized, transport).",
		}, []string{"op", "outcome"})

	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_upstream_seconds",
			Help:    "Remote API round-trip latency by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"})

	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_form_submissions_total",
			Help: "Form submissions by form id and terminal phase.",
		}, []string{"form", "phase"})

	GuardRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_form_inflight_rejections_total",
			Help: "Submissions refused because one was already outstanding.",
		}, []string{"form"})
)

func init() {
	prometheus.MustRegister(
		ActiveSessions,
		SessionEvictions,
		UpstreamCalls,
		UpstreamLatency,
		Submissions,
		GuardRejections,
	)
}
