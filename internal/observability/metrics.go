// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	TransactionsFetched prometheus.Counter
	TradesDecoded       prometheus.Counter
	TransactionsSkipped *prometheus.CounterVec
	FactsStored         prometheus.Counter
	HighestSlotSeen     prometheus.Gauge

	// Detection metrics
	DetectionRuns      prometheus.Counter
	DetectionsEmitted  *prometheus.CounterVec
	VictimsExamined    prometheus.Counter
	BatchSize          prometheus.Histogram

	// Simulation metrics
	ScenariosSimulated prometheus.Counter

	// Latency metrics
	RPCCallLatency  *prometheus.HistogramVec
	DetectLatency   prometheus.Histogram
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_sandwich_lab"
	}

	return &Metrics{
		// Ingestion metrics
		TransactionsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "transactions_fetched_total",
			Help:      "Total number of transactions fetched from the RPC node",
		}),
		TradesDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "trades_decoded_total",
			Help:      "Total number of transactions decoded into trade facts",
		}),
		TransactionsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "transactions_skipped_total",
			Help:      "Total number of transactions skipped by reason",
		}, []string{"reason"}),
		FactsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "facts_stored_total",
			Help:      "Total number of trade facts stored to database",
		}),
		HighestSlotSeen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "highest_slot_seen",
			Help:      "Highest Solana slot number seen",
		}),

		// Detection metrics
		DetectionRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "runs_total",
			Help:      "Total number of detection runs",
		}),
		DetectionsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "events_total",
			Help:      "Total number of detection events emitted by kind",
		}, []string{"kind"}),
		VictimsExamined: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "victims_examined_total",
			Help:      "Total number of victim candidates examined",
		}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "batch_size",
			Help:      "Number of trade facts per detection batch",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000},
		}),

		// Simulation metrics
		ScenariosSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "scenarios_total",
			Help:      "Total number of attack scenarios simulated",
		}),

		// Latency metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		DetectLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "run_duration_seconds",
			Help:      "Detection run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTransactionFetched increments the transactions fetched counter.
func RecordTransactionFetched() {
	DefaultMetrics.TransactionsFetched.Inc()
}

// RecordTradeDecoded increments the trades decoded counter.
func RecordTradeDecoded() {
	DefaultMetrics.TradesDecoded.Inc()
}

// RecordTransactionSkipped records a skipped transaction with its reason.
func RecordTransactionSkipped(reason string) {
	DefaultMetrics.TransactionsSkipped.WithLabelValues(reason).Inc()
}

// RecordFactsStored adds to the facts stored counter.
func RecordFactsStored(count int) {
	DefaultMetrics.FactsStored.Add(float64(count))
}

// UpdateHighestSlot updates the highest slot seen gauge.
func UpdateHighestSlot(slot uint64) {
	DefaultMetrics.HighestSlotSeen.Set(float64(slot))
}

// RecordDetectionRun records one detection run over a batch.
func RecordDetectionRun(batchSize int, durationSeconds float64) {
	DefaultMetrics.DetectionRuns.Inc()
	DefaultMetrics.BatchSize.Observe(float64(batchSize))
	DefaultMetrics.DetectLatency.Observe(durationSeconds)
}

// RecordDetection increments the detection event counter for a kind.
func RecordDetection(kind string) {
	DefaultMetrics.DetectionsEmitted.WithLabelValues(kind).Inc()
}

// RecordScenarioSimulated increments the scenarios simulated counter.
func RecordScenarioSimulated() {
	DefaultMetrics.ScenariosSimulated.Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
