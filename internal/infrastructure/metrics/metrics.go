package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Claudio-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claudio",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claudio",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Intake turn counters
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claudio",
			Subsystem: "api",
			Name:      "turns_total",
			Help:      "Total intake turns handled",
		},
		[]string{"outcome"},
	)

	// Extraction mode counters
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claudio",
			Subsystem: "api",
			Name:      "extractions_total",
			Help:      "Total response extractions by recovery mode",
		},
		[]string{"mode"},
	)

	// LLM call duration histogram
	LLMDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claudio",
			Subsystem: "api",
			Name:      "llm_duration_seconds",
			Help:      "LLM completion duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"process", "model"},
	)

	// Contract generation counters
	ContractGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claudio",
			Subsystem: "api",
			Name:      "contract_generations_total",
			Help:      "Total contract generation attempts",
		},
		[]string{"outcome"},
	)

	// Chain transaction duration histogram
	ChainTxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "claudio",
			Subsystem: "api",
			Name:      "chain_tx_duration_seconds",
			Help:      "Agreement registration duration in seconds",
			Buckets:   []float64{1, 2, 5, 10, 30, 60, 120},
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordTurn records a handled intake turn
func RecordTurn(outcome string) {
	TurnsTotal.WithLabelValues(outcome).Inc()
}

// RecordExtraction records which recovery mode produced the extracted record
func RecordExtraction(mode string) {
	ExtractionsTotal.WithLabelValues(mode).Inc()
}

// RecordLLMCall records an LLM completion
func RecordLLMCall(process, model string, durationSec float64) {
	LLMDuration.WithLabelValues(process, model).Observe(durationSec)
}

// RecordContractGeneration records a contract generation attempt
func RecordContractGeneration(outcome string) {
	ContractGenerationsTotal.WithLabelValues(outcome).Inc()
}

// RecordChainTx records an agreement registration
func RecordChainTx(durationSec float64) {
	ChainTxDuration.Observe(durationSec)
}
