package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/norma-dev/levelapp/pkg/model"
)

func TestPrometheusExporter_Export(t *testing.T) {
	m := &Metrics{
		ScenariosTotal:    10,
		AttemptsTotal:     20,
		InteractionsTotal: 100,
		EvaluationsFailed: 15,
		TotalDurationMs:   5000,
	}

	exporter := NewPrometheusExporter(m)
	output := exporter.Export()

	expectedLines := []string{
		"levelapp_scenarios_total 10",
		"levelapp_attempts_total 20",
		"levelapp_interactions_total 100",
		"levelapp_evaluations_failed_total 15",
		"levelapp_run_duration_milliseconds 5000",
		"levelapp_evaluation_failure_rate 0.15",
	}

	for _, expected := range expectedLines {
		if !strings.Contains(output, expected) {
			t.Errorf("Export() missing expected line: %s\nGot:\n%s", expected, output)
		}
	}
}

func TestPrometheusExporter_Handler(t *testing.T) {
	m := &Metrics{
		ScenariosTotal:    2,
		AttemptsTotal:     4,
		InteractionsTotal: 8,
		EvaluationsFailed: 1,
	}

	exporter := NewPrometheusExporter(m)

	handler := exporter.Handler()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Handler() status = %d, want %d", rec.Code, http.StatusOK)
	}

	contentType := rec.Header().Get("Content-Type")
	expectedContentType := "text/plain; version=0.0.4; charset=utf-8"
	if contentType != expectedContentType {
		t.Errorf("Handler() Content-Type = %s, want %s", contentType, expectedContentType)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "levelapp_interactions_total 8") {
		t.Errorf("Handler() body missing expected metric:\nGot:\n%s", body)
	}
	if !strings.Contains(body, "levelapp_evaluation_failure_rate") {
		t.Errorf("Handler() body missing failure rate metric:\nGot:\n%s", body)
	}
}

func TestFromBatchResult(t *testing.T) {
	result := &model.BatchResult{
		TotalDurationSeconds: 2.5,
		Scenarios: []model.ScenarioResult{
			{
				Attempts: []model.ScenarioAttemptResult{
					{
						Interactions: []model.InteractionResult{
							{EvaluationResults: map[string]model.EvaluationResult{
								"openai": {MatchLevel: 4},
							}},
							{EvaluationResults: map[string]model.EvaluationResult{
								"openai": {MatchLevel: 0},
							}},
						},
					},
				},
			},
		},
	}

	m := FromBatchResult(result)

	if m.ScenariosTotal != 1 {
		t.Errorf("ScenariosTotal = %d, want 1", m.ScenariosTotal)
	}
	if m.AttemptsTotal != 1 {
		t.Errorf("AttemptsTotal = %d, want 1", m.AttemptsTotal)
	}
	if m.InteractionsTotal != 2 {
		t.Errorf("InteractionsTotal = %d, want 2", m.InteractionsTotal)
	}
	if m.EvaluationsFailed != 1 {
		t.Errorf("EvaluationsFailed = %d, want 1", m.EvaluationsFailed)
	}
	if m.TotalDurationMs != 2500 {
		t.Errorf("TotalDurationMs = %d, want 2500", m.TotalDurationMs)
	}
}

func TestPrometheusExporter_FailureRate(t *testing.T) {
	tests := []struct {
		name              string
		interactionsTotal int64
		evaluationsFailed int64
		wantRate          string
	}{
		{"15% failure rate", 100, 15, "0.15"},
		{"zero interactions", 0, 0, "0"},
		{"100% failure", 50, 50, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Metrics{
				InteractionsTotal: tt.interactionsTotal,
				EvaluationsFailed: tt.evaluationsFailed,
			}

			exporter := NewPrometheusExporter(m)
			output := exporter.Export()

			expectedLine := "levelapp_evaluation_failure_rate " + tt.wantRate
			if !strings.Contains(output, expectedLine) {
				t.Errorf("Export() failure rate = want %s in output:\n%s", expectedLine, output)
			}
		})
	}
}
