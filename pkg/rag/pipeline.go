package rag

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/norma-dev/levelapp/pkg/httpclient"
	"github.com/norma-dev/levelapp/pkg/judge"
	"golang.org/x/sync/errgroup"
)

// judgeStrongThreshold / judgeTieScore mirror rag_evaluator.py's
// JUDGE_STRONG_THRESHOLD / JUDGE_TIE_SCORE constants.
const (
	judgeStrongThreshold = 4
	judgeTieScore        = 3
)

// Comparison is the judge-driven verdict between the expected and chatbot
// answers, grounded on LLMComparison in
// original_source/level_core/entities/metric.py (as referenced by
// rag_evaluator.py).
type Comparison struct {
	BetterAnswer  string `json:"better_answer"`
	Justification string `json:"justification"`
}

// EvaluationResult is the "evaluate" envelope: NLP metrics plus the judge
// comparison.
type EvaluationResult struct {
	SessionID      string     `json:"session_id"`
	Prompt         string     `json:"prompt"`
	ExpectedAnswer string     `json:"expected_answer"`
	ChatbotAnswer  string     `json:"chatbot_answer"`
	Metrics        Metrics    `json:"metrics"`
	Comparison     Comparison `json:"comparison"`
	ExecutionTime  float64    `json:"execution_time_seconds"`
}

// Pipeline wires together the three stateful RAG operations (initialize,
// generate_expected, evaluate) over a shared SessionStore, grounded on
// original_source/level_core/simluators/rag_simulator.py's RAGSimulator.
type Pipeline struct {
	store         SessionStore
	httpClient    *http.Client
	chatClient    *httpclient.Client
	generator     GenerationProvider
	judges        *judge.Service
	judgeProvider string
	sink          EventSink
}

// NewPipeline constructs a RAG Pipeline. judgeProvider selects which
// Evaluation Service provider is used for the comparison step
// (LEVELAPP_JUDGE_PROVIDER, default "openai").
func NewPipeline(store SessionStore, chatClient *httpclient.Client, generator GenerationProvider, judges *judge.Service, judgeProvider string, sink EventSink) *Pipeline {
	if judgeProvider == "" {
		judgeProvider = "openai"
	}
	return &Pipeline{
		store:         store,
		httpClient:    &http.Client{Timeout: ScrapeTimeout},
		chatClient:    chatClient,
		generator:     generator,
		judges:        judges,
		judgeProvider: strings.ToLower(judgeProvider),
		sink:          sink,
	}
}

// Initialize warms the target agent, scrapes pageURL, and chunks its
// paragraph text, minting a fresh session.
func (p *Pipeline) Initialize(ctx context.Context, pageURL string, chunkSize int, modelID, chatbotBaseURL, chatbotChatPath string) (Session, error) {
	logEvent(p.sink, "INFO", fmt.Sprintf("starting RAG initialization and scraping for: %s", pageURL), nil)

	baseURL := strings.TrimSuffix(chatbotBaseURL, "/")
	chatPath := chatbotChatPath
	if !strings.HasPrefix(chatPath, "/") {
		chatPath = "/" + chatPath
	}

	warmClient := httpclient.New("")
	var warmResp map[string]any
	if err := warmClient.PostJSONWithHeaders(ctx, baseURL+"/init", map[string]string{"x-model-id": modelID}, map[string]string{"page_url": pageURL}, &warmResp); err != nil {
		return Session{}, fmt.Errorf("rag: initialization warm-up failed: %w", err)
	}

	chunks, err := ScrapePage(ctx, p.httpClient, pageURL, chunkSize)
	if err != nil {
		return Session{}, err
	}

	session := Session{
		ID:              uuid.NewString(),
		PageURL:         pageURL,
		Chunks:          chunks,
		ChunkSize:       chunkSize,
		ModelID:         modelID,
		ChatbotBaseURL:  baseURL,
		ChatbotChatPath: chatPath,
		CreatedAt:       time.Now(),
	}
	p.store.Put(session)

	logEvent(p.sink, "INFO", fmt.Sprintf("RAG initialized and scraped. Session: %s", session.ID), nil)
	return session, nil
}

// GenerateExpected builds the golden answer from the human-selected chunks
// and records it on the session.
func (p *Pipeline) GenerateExpected(ctx context.Context, sessionID, prompt string, manualOrder []int, expectedModel string) (string, error) {
	session, ok := p.store.Get(sessionID)
	if !ok {
		return "", fmt.Errorf("rag: session %s not found", sessionID)
	}

	answer, selected, err := GenerateExpected(ctx, p.generator, session.Chunks, manualOrder, prompt, expectedModel, p.sink)
	if err != nil {
		return "", err
	}

	session.ExpectedAnswer = answer
	session.SelectedChunks = selected
	session.Prompt = prompt
	p.store.Put(session)

	return answer, nil
}

// Evaluate queries the chatbot for prompt, then computes NLP metrics and the
// judge comparison against expectedAnswer.
func (p *Pipeline) Evaluate(ctx context.Context, sessionID, prompt, expectedAnswer string) (EvaluationResult, error) {
	start := time.Now()

	session, ok := p.store.Get(sessionID)
	if !ok {
		return EvaluationResult{}, fmt.Errorf("rag: session %s not found", sessionID)
	}

	logEvent(p.sink, "INFO", fmt.Sprintf("starting RAG evaluation for session: %s", sessionID), nil)

	headers := map[string]string{"x-model-id": session.ModelID}
	chatbotAnswer, err := PostChat(ctx, p.chatClient, session.ChatbotBaseURL, session.ChatbotChatPath, headers, prompt)
	if err != nil {
		return EvaluationResult{}, err
	}

	session.ChatbotAnswer = chatbotAnswer
	p.store.Put(session)

	// NLP scoring is pure CPU and the judge comparison is a blocking HTTP
	// round-trip; neither depends on the other's output, so they run
	// concurrently rather than back to back.
	var metrics Metrics
	var comparison Comparison
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		metrics = ComputeMetrics(expectedAnswer, chatbotAnswer)
		return nil
	})
	g.Go(func() error {
		comparison = p.compareAnswers(gctx, prompt, expectedAnswer, chatbotAnswer)
		return nil
	})
	// Neither goroutine returns an error: ComputeMetrics can't fail and
	// compareAnswers folds judge failures into Comparison itself.
	_ = g.Wait()

	logEvent(p.sink, "INFO", "RAG evaluation completed successfully", nil)

	return EvaluationResult{
		SessionID:      sessionID,
		Prompt:         prompt,
		ExpectedAnswer: expectedAnswer,
		ChatbotAnswer:  chatbotAnswer,
		Metrics:        metrics,
		Comparison:     comparison,
		ExecutionTime:  time.Since(start).Seconds(),
	}, nil
}

// compareAnswers dispatches to the configured judge provider and maps its
// match_level to better_answer.
func (p *Pipeline) compareAnswers(ctx context.Context, prompt, expected, actual string) Comparison {
	result, err := p.judges.EvaluateResponse(ctx, p.judgeProvider, actual, expected, prompt)
	if err != nil {
		return Comparison{BetterAnswer: "tie", Justification: fmt.Sprintf("evaluation error: %v", err)}
	}

	var better string
	switch {
	case result.MatchLevel >= judgeStrongThreshold:
		better = "chatbot"
	case result.MatchLevel == judgeTieScore:
		better = "tie"
	default:
		better = "expected"
	}

	return Comparison{BetterAnswer: better, Justification: result.Justification}
}
