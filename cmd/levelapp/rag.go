package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/norma-dev/levelapp/pkg/config"
	"github.com/norma-dev/levelapp/pkg/httpclient"
	"github.com/norma-dev/levelapp/pkg/judge"
	"github.com/norma-dev/levelapp/pkg/rag"
)

func (r *RAGCmd) execute() error {
	ctx, cancel := defaultContext()
	defer cancel()

	cfg, err := config.Load(r.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	svc := judge.NewService()
	for name, p := range cfg.Providers {
		evalCfg := toEvaluationConfig(p)
		if err := svc.SetConfig(name, evalCfg); err != nil {
			return fmt.Errorf("failed to configure provider %s: %w", name, err)
		}
	}

	judgeProvider := r.JudgeProvider
	if judgeProvider == "" {
		judgeProvider = cfg.Orchestrator.JudgeProvider
	}

	expectedModel := r.ExpectedModel
	if expectedModel == "" {
		expectedModel = cfg.Orchestrator.ExpectedModel
	}

	apiKey := ""
	if p, ok := cfg.Providers["openai"]; ok {
		apiKey = p.APIKey
	}
	generator := rag.NewOpenAIGenerator(apiKey)

	pipeline := rag.NewPipeline(
		rag.NewMemoryStore(),
		httpclient.New(""),
		generator,
		svc,
		judgeProvider,
		rag.NewInProcessSink(),
	)

	session, err := pipeline.Initialize(ctx, r.PageURL, r.ChunkSize, expectedModel, r.ChatbotURL, r.ChatbotChatPath)
	if err != nil {
		return fmt.Errorf("initialize failed: %w", err)
	}

	manualOrder := make([]int, len(session.Chunks))
	for i := range session.Chunks {
		manualOrder[i] = i
	}

	expected, err := pipeline.GenerateExpected(ctx, session.ID, r.Prompt, manualOrder, expectedModel)
	if err != nil {
		return fmt.Errorf("generate expected answer failed: %w", err)
	}

	result, err := pipeline.Evaluate(ctx, session.ID, r.Prompt, expected)
	if err != nil {
		return fmt.Errorf("evaluate failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
