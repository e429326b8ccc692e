package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "docqa"

var (
	DocumentsStored = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: namespace, Name: "documents_stored", Help: "Number of documents currently held in memory."},
	)
	QuestionsAnswered = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "questions_answered_total", Help: "Answered questions by confidence label."},
		[]string{"confidence"},
	)
	GenerationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "generation_failures_total", Help: "Failed ask operations by error kind."},
		[]string{"kind"},
	)
	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "generation_duration_seconds", Help: "Latency of generation endpoint calls.", Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60}},
		[]string{"provider"},
	)
	GenerationCost = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "generation_cost_usd_total", Help: "Estimated generation spend in USD."},
		[]string{"provider", "model"},
	)
	QuotesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "quotes_dropped_total", Help: "Model quotes discarded because they do not appear in the document."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

// NewRegistry returns a registry holding the service collectors plus the Go
// runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	RegisterCollectors(reg)
	return reg
}

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DocumentsStored)
	reg.MustRegister(QuestionsAnswered)
	reg.MustRegister(GenerationFailures)
	reg.MustRegister(GenerationDuration)
	reg.MustRegister(GenerationCost)
	reg.MustRegister(QuotesDropped)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
