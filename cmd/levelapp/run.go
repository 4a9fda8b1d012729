package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/norma-dev/levelapp/internal/sink"
	"github.com/norma-dev/levelapp/pkg/config"
	"github.com/norma-dev/levelapp/pkg/judge"
	"github.com/norma-dev/levelapp/pkg/metrics"
	"github.com/norma-dev/levelapp/pkg/model"
	"github.com/norma-dev/levelapp/pkg/simulator"
)

func (r *RunCmd) execute() error {
	ctx, cancel := r.setupContext()
	defer cancel()

	cfg, err := config.Load(r.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	batch, err := loadConversationBatch(r.BatchFile)
	if err != nil {
		return err
	}

	svc := judge.NewService()
	for name, p := range cfg.Providers {
		if err := svc.SetConfig(name, toEvaluationConfig(p)); err != nil {
			return fmt.Errorf("failed to configure provider %s: %w", name, err)
		}
	}

	sim := simulator.New(svc, simulator.Options{ScenarioConcurrency: r.Concurrency})
	sim.Configure(simulator.EndpointDescriptor{URL: r.AgentURL})

	result, err := sim.RunBatch(ctx, batch, r.Attempts)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if err := printRunResult(result, r.Format, r.Verbose); err != nil {
		return err
	}

	if r.Output != "" {
		jsonlSink := sink.NewJSONLSink(r.Output)
		if err := jsonlSink.Persist(ctx, result); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "\nJSONL output written to: %s\n", r.Output)
	}

	if r.MetricsAddr != "" {
		serveMetrics(ctx, r.MetricsAddr, metrics.FromBatchResult(result))
	}

	return nil
}

// serveMetrics exposes result's Prometheus-format metrics at /metrics until
// ctx is canceled (SIGINT/SIGTERM), so a scraper can pull the completed
// run's stats before the process exits.
func serveMetrics(ctx context.Context, addr string, m *metrics.Metrics) {
	exporter := metrics.NewPrometheusExporter(m)
	mux := http.NewServeMux()
	mux.Handle("/metrics", exporter.Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	fmt.Fprintf(os.Stderr, "\nServing run metrics at http://%s/metrics (Ctrl-C to exit)\n", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "metrics server error: %v\n", err)
	}
}

func (r *RunCmd) setupContext() (context.Context, context.CancelFunc) {
	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(baseCtx, r.Timeout)
	return ctx, func() {
		stop()
		cancel()
	}
}

func loadConversationBatch(path string) (model.ConversationBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ConversationBatch{}, fmt.Errorf("failed to read batch file: %w", err)
	}

	var batch model.ConversationBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return model.ConversationBatch{}, fmt.Errorf("invalid batch file: %w", err)
	}
	return batch, nil
}

func printRunResult(result *model.BatchResult, format string, verbose bool) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case "jsonl":
		encoder := json.NewEncoder(os.Stdout)
		for _, scenario := range result.Scenarios {
			if err := encoder.Encode(scenario); err != nil {
				return fmt.Errorf("failed to encode scenario: %w", err)
			}
		}
		return nil
	default:
		printRunTable(result, verbose)
		return nil
	}
}

func printRunTable(result *model.BatchResult, verbose bool) {
	fmt.Println("\nlevelapp Run Results")
	fmt.Println("====================")

	if len(result.Scenarios) == 0 {
		fmt.Println("No scenarios recorded")
		return
	}

	for _, scenario := range result.Scenarios {
		fmt.Printf("\nScenario: %s (%s)\n", scenario.ConversationID, scenario.Description)
		fmt.Println("---")
		for _, avg := range sortedScores(scenario.AverageScores) {
			fmt.Printf("  %s: %.2f\n", avg.provider, avg.score)
		}
		if verbose {
			for i, a := range scenario.Attempts {
				fmt.Printf("  Attempt %d (%.2fs):\n", i+1, a.ExecutionTimeSeconds)
				for _, ir := range a.Interactions {
					fmt.Printf("    > %s\n", truncate(ir.UserMessage, 60))
					fmt.Printf("    < %s\n", truncate(ir.AgentReply, 60))
				}
			}
		}
	}

	fmt.Println("\nOverall averages:")
	for _, avg := range sortedScores(result.AverageScores) {
		fmt.Printf("  %s: %.2f\n", avg.provider, avg.score)
	}
	fmt.Printf("\nTotal duration: %.2fs (avg per attempt: %.2fs)\n", result.TotalDurationSeconds, result.AverageExecutionTime)
}

type providerScore struct {
	provider string
	score    float64
}

func sortedScores(scores map[string]float64) []providerScore {
	out := make([]providerScore, 0, len(scores))
	for provider, score := range scores {
		out = append(out, providerScore{provider, score})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].provider < out[j-1].provider; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
