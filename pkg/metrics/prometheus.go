package metrics

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/norma-dev/levelapp/pkg/model"
)

// Metrics tracks run execution statistics for one levelapp batch run.
type Metrics struct {
	ScenariosTotal    int64
	AttemptsTotal     int64
	InteractionsTotal int64
	EvaluationsFailed int64
	TotalDurationMs   int64
}

// FromBatchResult populates a Metrics snapshot from a completed run.
func FromBatchResult(result *model.BatchResult) *Metrics {
	m := &Metrics{
		ScenariosTotal:  int64(len(result.Scenarios)),
		TotalDurationMs: int64(result.TotalDurationSeconds * 1000),
	}
	for _, scenario := range result.Scenarios {
		atomic.AddInt64(&m.AttemptsTotal, int64(len(scenario.Attempts)))
		for _, attempt := range scenario.Attempts {
			atomic.AddInt64(&m.InteractionsTotal, int64(len(attempt.Interactions)))
			for _, interaction := range attempt.Interactions {
				for _, eval := range interaction.EvaluationResults {
					if eval.MatchLevel == 0 {
						atomic.AddInt64(&m.EvaluationsFailed, 1)
					}
				}
			}
		}
	}
	return m
}

// PrometheusExporter exports a run's Metrics in Prometheus text format.
type PrometheusExporter struct {
	metrics *Metrics
}

// NewPrometheusExporter creates a new Prometheus exporter.
func NewPrometheusExporter(m *Metrics) *PrometheusExporter {
	return &PrometheusExporter{
		metrics: m,
	}
}

// Export returns metrics in Prometheus text format.
func (e *PrometheusExporter) Export() string {
	var b strings.Builder

	scenariosTotal := atomic.LoadInt64(&e.metrics.ScenariosTotal)
	attemptsTotal := atomic.LoadInt64(&e.metrics.AttemptsTotal)
	interactionsTotal := atomic.LoadInt64(&e.metrics.InteractionsTotal)
	evaluationsFailed := atomic.LoadInt64(&e.metrics.EvaluationsFailed)
	durationMs := atomic.LoadInt64(&e.metrics.TotalDurationMs)

	fmt.Fprintf(&b, "levelapp_scenarios_total %d\n", scenariosTotal)
	fmt.Fprintf(&b, "levelapp_attempts_total %d\n", attemptsTotal)
	fmt.Fprintf(&b, "levelapp_interactions_total %d\n", interactionsTotal)
	fmt.Fprintf(&b, "levelapp_evaluations_failed_total %d\n", evaluationsFailed)
	fmt.Fprintf(&b, "levelapp_run_duration_milliseconds %d\n", durationMs)

	var failureRate float64
	if interactionsTotal > 0 {
		failureRate = float64(evaluationsFailed) / float64(interactionsTotal)
	}
	fmt.Fprintf(&b, "levelapp_evaluation_failure_rate %s\n", formatFloat(failureRate))

	return b.String()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, e.Export())
	})
}

// formatFloat formats a float64 for Prometheus (removes trailing zeros).
func formatFloat(f float64) string {
	if f == 0.0 {
		return "0"
	}
	s := fmt.Sprintf("%.4f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
