package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	generationsTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "plan_generations_total",
		Help: "Plan generation attempts by outcome.",
	}, []string{"outcome"})

	generationDuration = promauto.With(Registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "plan_generation_duration_ms",
		Help:    "Generation gateway latency in milliseconds.",
		Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000},
	})

	gateBlockedTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "export_gate_blocked_total",
		Help: "PDF export requests blocked by the export gate, labelled by first unmet precondition.",
	}, []string{"reason"})

	exportsTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "report_exports_total",
		Help: "Report exports by format and outcome.",
	}, []string{"format", "outcome"})

	persistenceCorruptTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "persistence_corrupt_reads_total",
		Help: "Persisted records discarded because they failed to parse.",
	}, []string{"record"})
)

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
}

// IncGeneration counts a generation attempt; outcome is one of succeeded, failed, rejected, busy.
func IncGeneration(outcome string) {
	generationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveGeneration records the gateway latency.
func ObserveGeneration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	generationDuration.Observe(float64(d.Microseconds()) / 1000.0)
}

// IncGateBlocked counts a blocked PDF export.
func IncGateBlocked(reason string) {
	gateBlockedTotal.WithLabelValues(reason).Inc()
}

// IncExport counts an export; outcome is one of ok, fallback, failed.
func IncExport(format, outcome string) {
	exportsTotal.WithLabelValues(format, outcome).Inc()
}

// IncCorruptRead counts a discarded persisted record.
func IncCorruptRead(record string) {
	persistenceCorruptTotal.WithLabelValues(record).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
