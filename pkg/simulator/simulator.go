package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/norma-dev/levelapp/pkg/judge"
	"github.com/norma-dev/levelapp/pkg/model"
	"golang.org/x/sync/errgroup"
)

// Simulator drives a ConversationBatch against a configured agent endpoint,
// dispatching every completed turn to the evaluation service's configured
// judges. Grounded on pkg/scanner.Scanner: errgroup-bounded fan-out,
// sequential sub-runs, per-task failure containment.
type Simulator struct {
	opts     Options
	endpoint EndpointDescriptor
	judges   *judge.Service
	client   *http.Client
}

// New constructs a Simulator dispatching judge calls through svc.
func New(svc *judge.Service, opts Options) *Simulator {
	return &Simulator{
		opts:   opts,
		judges: svc,
		client: &http.Client{Timeout: RequestTimeout},
	}
}

// Configure sets the target agent for subsequent RunBatch calls.
func (s *Simulator) Configure(endpoint EndpointDescriptor) {
	s.endpoint = endpoint
}

// RunBatch executes every conversation in batch, running attempts sequential
// sub-runs each, and returns the aggregated BatchResult.
func (s *Simulator) RunBatch(ctx context.Context, batch model.ConversationBatch, attempts int) (*model.BatchResult, error) {
	startedAt := time.Now()

	result := &model.BatchResult{
		Scenarios:            make([]model.ScenarioResult, len(batch.Conversations)),
		AverageScores:        make(map[string]float64),
		GlobalJustifications: make(map[string][]string),
		StartedAt:            startedAt,
	}

	if len(batch.Conversations) == 0 {
		result.FinishedAt = time.Now()
		result.TotalDurationSeconds = result.FinishedAt.Sub(startedAt).Seconds()
		return result, nil
	}

	limit := s.opts.ScenarioConcurrency
	if limit <= 0 {
		limit = len(batch.Conversations)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var justMu sync.Mutex
	justifications := make(map[string][]string)

	for i, convo := range batch.Conversations {
		i, convo := i, convo
		g.Go(func() error {
			scenario := s.runScenario(gctx, convo, attempts, &justMu, justifications)
			result.Scenarios[i] = scenario
			return nil
		})
	}
	// Scenario failures never propagate: runScenario never returns an
	// error, so every task returns nil and g.Wait reports no error; caller
	// cancellation reaches each scenario through gctx instead.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.AverageScores = averageAcrossScenarios(result.Scenarios)
	result.GlobalJustifications = summarizeJustifications(justifications)

	result.FinishedAt = time.Now()
	result.TotalDurationSeconds = result.FinishedAt.Sub(startedAt).Seconds()
	result.AverageExecutionTime = averageExecutionTime(result.Scenarios)

	return result, nil
}

// runScenario executes all sequential sub-runs for one conversation.
func (s *Simulator) runScenario(ctx context.Context, convo model.BasicConversation, attempts int, justMu *sync.Mutex, justifications map[string][]string) model.ScenarioResult {
	scenario := model.ScenarioResult{
		ConversationID: convo.ID,
		Description:    convo.Description,
		Attempts:       make([]model.ScenarioAttemptResult, attempts),
		AverageScores:  make(map[string]float64),
	}

	for attempt := 0; attempt < attempts; attempt++ {
		scenario.Attempts[attempt] = s.runAttempt(ctx, convo, attempt, justMu, justifications)
	}

	scenario.AverageScores = averageAcrossAttempts(scenario.Attempts)
	return scenario
}

// runAttempt executes one sequential sub-run: every Interaction in order,
// with per-turn judge fan-out across all configured providers.
func (s *Simulator) runAttempt(ctx context.Context, convo model.BasicConversation, attemptIndex int, justMu *sync.Mutex, justifications map[string][]string) model.ScenarioAttemptResult {
	start := time.Now()

	attemptResult := model.ScenarioAttemptResult{
		AttemptID:      fmt.Sprintf("batch-%d", attemptIndex),
		ConversationID: convo.ID,
		Interactions:   make([]model.InteractionResult, len(convo.Interactions)),
		AverageScores:  make(map[string]float64),
	}

	for i, interaction := range convo.Interactions {
		attemptResult.Interactions[i] = s.runInteraction(ctx, interaction, justMu, justifications)
	}

	attemptResult.AverageScores = averageAcrossInteractions(attemptResult.Interactions)
	attemptResult.ExecutionTimeSeconds = time.Since(start).Seconds()
	return attemptResult
}

// runInteraction posts one turn to the agent and, on transport success,
// fans out to every configured judge in parallel.
func (s *Simulator) runInteraction(ctx context.Context, interaction model.Interaction, justMu *sync.Mutex, justifications map[string][]string) model.InteractionResult {
	ir := model.InteractionResult{
		UserMessage:       interaction.UserMessage,
		ReferenceReply:    interaction.ReferenceReply,
		ReferenceMetadata: interaction.ReferenceMetadata,
		GeneratedMetadata: interaction.GeneratedMetadata,
	}

	reply, err := s.callAgent(ctx, interaction.UserMessage)
	if err != nil {
		ir.AgentReply = model.RequestFailedReply
		ir.EvaluationResults = map[string]model.EvaluationResult{}
		return ir
	}
	ir.AgentReply = reply

	ir.EvaluationResults = s.evaluateAll(ctx, reply, interaction.ReferenceReply, interaction.UserMessage)

	justMu.Lock()
	for provider, res := range ir.EvaluationResults {
		if res.Justification != "" {
			justifications[provider] = append(justifications[provider], res.Justification)
		}
	}
	justMu.Unlock()

	return ir
}

// callAgent issues one POST to the configured endpoint and returns the
// adapted plain-text reply. A non-2xx response or transport failure is
// reported as an error and contained to this turn by the caller.
func (s *Simulator) callAgent(ctx context.Context, userMessage string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	payload := buildPayload(s.endpoint.PayloadTemplate, map[string]string{"user_message": userMessage})
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.endpoint.URL, bytes.NewReader(encoded))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.endpoint.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("simulator: agent returned status %d", resp.StatusCode)
	}

	return adaptResponse(body), nil
}

// evaluateAll dispatches to every configured judge provider in parallel and
// collects each EvaluationResult, keyed by provider name.
func (s *Simulator) evaluateAll(ctx context.Context, agentReply, referenceReply, userMessage string) map[string]model.EvaluationResult {
	providers := s.judges.Providers()
	results := make(map[string]model.EvaluationResult, len(providers))
	if len(providers) == 0 {
		return results
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(len(providers))

	for _, provider := range providers {
		provider := provider
		go func() {
			defer wg.Done()
			res, err := s.judges.EvaluateResponse(ctx, provider, agentReply, referenceReply, userMessage)
			if err != nil {
				res = model.NewFailedResult(err.Error())
			}
			mu.Lock()
			results[provider] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	return results
}

// averageAcrossInteractions computes the per-provider mean over one
// sub-run's Interactions.
func averageAcrossInteractions(interactions []model.InteractionResult) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, ir := range interactions {
		for provider, res := range ir.EvaluationResults {
			sums[provider] += float64(res.MatchLevel)
			counts[provider]++
		}
	}
	return roundedAverages(sums, counts)
}

// averageAcrossAttempts computes the per-provider mean over a scenario's
// sub-runs.
func averageAcrossAttempts(attempts []model.ScenarioAttemptResult) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, a := range attempts {
		for provider, score := range a.AverageScores {
			sums[provider] += score
			counts[provider]++
		}
	}
	return roundedAverages(sums, counts)
}

// averageAcrossScenarios computes the batch-level per-provider mean over
// all scenarios.
func averageAcrossScenarios(scenarios []model.ScenarioResult) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, sc := range scenarios {
		for provider, score := range sc.AverageScores {
			sums[provider] += score
			counts[provider]++
		}
	}
	return roundedAverages(sums, counts)
}

func averageExecutionTime(scenarios []model.ScenarioResult) float64 {
	var total float64
	var count int
	for _, sc := range scenarios {
		for _, a := range sc.Attempts {
			total += a.ExecutionTimeSeconds
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return round3(total / float64(count))
}

// roundedAverages divides each sum by its matching count, rounding to 3
// decimals, and reports 0 for providers with no samples.
func roundedAverages(sums map[string]float64, counts map[string]int) map[string]float64 {
	out := make(map[string]float64, len(sums))
	for provider, sum := range sums {
		count := counts[provider]
		if count == 0 {
			out[provider] = 0
			continue
		}
		out[provider] = round3(sum / float64(count))
	}
	return out
}

func round3(v float64) float64 {
	return float64(int64(v*1000+0.5)) / 1000
}

// summarizeJustifications groups each provider's justifications by
// identical normalized text and emits up to 5 merged bullet lines.
func summarizeJustifications(raw map[string][]string) map[string][]string {
	out := make(map[string][]string, len(raw))
	for provider, lines := range raw {
		out[provider] = mergeJustifications(lines)
	}
	return out
}

func mergeJustifications(lines []string) []string {
	counts := make(map[string]int)
	var order []string
	for _, line := range lines {
		key := judge.NormalizeWhitespace(line)
		if key == "" {
			continue
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > 5 {
		order = order[:5]
	}

	bullets := make([]string, len(order))
	for i, key := range order {
		if counts[key] > 1 {
			bullets[i] = fmt.Sprintf("%s (x%d)", key, counts[key])
		} else {
			bullets[i] = key
		}
	}
	return bullets
}
