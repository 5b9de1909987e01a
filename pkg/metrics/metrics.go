// Package metrics registers the gateway's Prometheus collectors with the
// default registry and exposes small helpers to record them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	questionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ekaya_ask_questions_total",
			Help: "Questions handled, by pipeline route.",
		},
		[]string{"route"},
	)
	metaIntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ekaya_ask_meta_intents_total",
			Help: "Questions answered from catalog metadata, by intent.",
		},
		[]string{"intent"},
	)
	sqlGateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ekaya_ask_sql_gate_total",
			Help: "SQL safety gate decisions, by outcome.",
		},
		[]string{"outcome"},
	)
	safetyCapAppliedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ekaya_ask_safety_cap_applied_total",
			Help: "Statements that received the TOP safety cap.",
		},
	)
	schemaQualifiedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ekaya_ask_schema_qualified_total",
			Help: "Statements whose bare table names were qualified with the default schema.",
		},
	)
	completionDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ekaya_ask_completion_duration_seconds",
			Help:    "Completion service latency, by outcome.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ekaya_ask_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ekaya_ask_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		questionsTotal,
		metaIntentsTotal,
		sqlGateTotal,
		safetyCapAppliedTotal,
		schemaQualifiedTotal,
		completionDurationSeconds,
		httpRequestsTotal,
		httpRequestDurationSeconds,
	)
}

func ObserveQuestion(route string) {
	questionsTotal.WithLabelValues(route).Inc()
}

func ObserveMetaIntent(intent string) {
	metaIntentsTotal.WithLabelValues(intent).Inc()
}

// ObserveGate records a gate decision and the repairs applied on acceptance.
func ObserveGate(outcome string, safetyCapApplied, schemaQualified bool) {
	sqlGateTotal.WithLabelValues(outcome).Inc()
	if safetyCapApplied {
		safetyCapAppliedTotal.Inc()
	}
	if schemaQualified {
		schemaQualifiedTotal.Inc()
	}
}

// ObserveCompletion records one completion call; outcome is "ok" or an llm error type.
func ObserveCompletion(outcome string, elapsed time.Duration) {
	completionDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func ObserveHTTPRequest(method, path, status string, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
}
