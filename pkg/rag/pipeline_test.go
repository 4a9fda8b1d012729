package rag_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/norma-dev/levelapp/pkg/httpclient"
	"github.com/norma-dev/levelapp/pkg/judge"
	"github.com/norma-dev/levelapp/pkg/model"
	"github.com/norma-dev/levelapp/pkg/rag"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	answer string
}

func (g *stubGenerator) Generate(ctx context.Context, systemPrompt, userPrompt, model string) (string, error) {
	return g.answer, nil
}

type stubJudge struct {
	matchLevel    int
	justification string
}

func (s *stubJudge) BuildPrompt(userMessage, generatedText, expectedText string) string {
	return userMessage
}

func (s *stubJudge) CallLLM(ctx context.Context, prompt string) (map[string]any, error) {
	return map[string]any{"match_level": s.matchLevel, "justification": s.justification}, nil
}

func newJudgeService(t *testing.T, provider string, j *stubJudge) *judge.Service {
	t.Helper()
	judge.Register(provider, func(model.EvaluationConfig) (judge.Judge, error) {
		return j, nil
	})
	svc := judge.NewService()
	require.NoError(t, svc.SetConfig(provider, model.EvaluationConfig{APIKey: "k"}))
	return svc
}

func pageHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(`<html><body><p>Paragraph one.</p><p>Paragraph two.</p></body></html>`))
}

func TestPipeline_InitializeScrapesAndStoresSession(t *testing.T) {
	chatbot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/init" {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer chatbot.Close()

	page := httptest.NewServer(http.HandlerFunc(pageHandler))
	defer page.Close()

	store := rag.NewMemoryStore()
	pipeline := rag.NewPipeline(store, nil, nil, nil, "", nil)

	session, err := pipeline.Initialize(context.Background(), page.URL, 1000, "model-1", chatbot.URL, "/chat")
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	require.Len(t, session.Chunks, 1)

	stored, ok := store.Get(session.ID)
	require.True(t, ok)
	require.Equal(t, "model-1", stored.ModelID)
	require.Equal(t, "/chat", stored.ChatbotChatPath)
}

func TestPipeline_GenerateExpectedStoresAnswerAndSelection(t *testing.T) {
	store := rag.NewMemoryStore()
	store.Put(rag.Session{
		ID:     "sess-1",
		Chunks: []rag.Chunk{{Index: 0, Content: "fact one"}, {Index: 1, Content: "fact two"}},
	})

	gen := &stubGenerator{answer: "fact one is true"}
	pipeline := rag.NewPipeline(store, nil, gen, nil, "", nil)

	answer, err := pipeline.GenerateExpected(context.Background(), "sess-1", "what is fact one?", []int{0}, "")
	require.NoError(t, err)
	require.Equal(t, "fact one is true", answer)

	stored, ok := store.Get("sess-1")
	require.True(t, ok)
	require.Equal(t, []string{"fact one"}, stored.SelectedChunks)
	require.Equal(t, "what is fact one?", stored.Prompt)
}

func TestPipeline_EvaluateComputesMetricsAndComparison(t *testing.T) {
	chatbot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "the answer is fact one"})
	}))
	defer chatbot.Close()

	store := rag.NewMemoryStore()
	store.Put(rag.Session{
		ID:              "sess-2",
		ModelID:         "model-1",
		ChatbotBaseURL:  chatbot.URL,
		ChatbotChatPath: "/chat",
	})

	svc := newJudgeService(t, "eval.pipeline.judge", &stubJudge{matchLevel: 4, justification: "close match"})
	pipeline := rag.NewPipeline(store, httpclient.New(""), nil, svc, "eval.pipeline.judge", nil)

	result, err := pipeline.Evaluate(context.Background(), "sess-2", "what is the fact?", "fact one is true")
	require.NoError(t, err)

	require.Equal(t, "the answer is fact one", result.ChatbotAnswer)
	require.Equal(t, "chatbot", result.Comparison.BetterAnswer)
	require.Equal(t, "close match", result.Comparison.Justification)
	require.GreaterOrEqual(t, result.Metrics.ROUGELF1, 0.0)
}
