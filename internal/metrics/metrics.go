package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garagem_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "garagem_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MessagesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garagem_messages_processed_total",
			Help: "Total number of inbound messages processed by the pipeline.",
		},
		[]string{"outcome"},
	)

	GuardrailBlocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garagem_guardrail_blocks_total",
			Help: "Total number of messages blocked by guardrails.",
		},
		[]string{"direction", "reason"},
	)

	ProviderCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garagem_provider_calls_total",
			Help: "Total number of model provider call attempts.",
		},
		[]string{"provider", "status"},
	)

	ProviderCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "garagem_provider_call_duration_seconds",
			Help:    "Model provider call duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	BreakerTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garagem_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions.",
		},
		[]string{"provider", "to"},
	)

	LeadsCapturedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "garagem_leads_captured_total",
			Help: "Total number of sales leads captured.",
		},
	)

	HandoffsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garagem_handoffs_total",
			Help: "Total number of conversations handed off to a human.",
		},
		[]string{"cause"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		MessagesProcessedTotal,
		GuardrailBlocksTotal,
		ProviderCallsTotal,
		ProviderCallDuration,
		BreakerTransitionsTotal,
		LeadsCapturedTotal,
		HandoffsTotal,
	)
}
