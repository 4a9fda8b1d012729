package rag

import (
	"context"
	"fmt"
	"strings"
)

// maxContextChars caps the concatenated selected-chunk context.
const maxContextChars = 12000

const chunkConcatSeparator = "\n\n---\n\n"

// notFoundSentinel is the strict-prompt's exact refusal string; seeing it
// with a non-empty selection triggers one retry with a gentler prompt.
const notFoundSentinel = "Not found in the provided context."

const strictSystemPrompt = "Answer the QUESTION using only the information in CONTEXT. " +
	"If the answer is not contained in CONTEXT, respond with exactly: " + notFoundSentinel

const gentleSystemPrompt = "Summarize what CONTEXT says that is most relevant to QUESTION, " +
	"even if it does not fully answer it. Do not invent facts not present in CONTEXT."

// DefaultExpectedModel is LEVELAPP_EXPECTED_MODEL's fallback value.
const DefaultExpectedModel = "gpt-4o-mini"

// buildContext concatenates selectedChunks with chunkConcatSeparator,
// truncating at maxContextChars.
func buildContext(selectedChunks []string) string {
	joined := strings.Join(selectedChunks, chunkConcatSeparator)
	if len(joined) > maxContextChars {
		return joined[:maxContextChars]
	}
	return joined
}

func userPrompt(context, question string) string {
	return fmt.Sprintf("CONTEXT:\n%s\n\nQUESTION:\n%s", context, question)
}

// GenerateExpected concatenates the chunks selected by manualOrder (capped
// at 12 000 characters), asks the generation provider for a strict
// context-only answer, and retries once with a gentler summarization
// prompt if the model refuses on a non-empty selection. Grounded on
// original_source/level_core/simluators/rag_simulator.py's
// generate_expected_answer (the exact-refusal retry step).
func GenerateExpected(ctx context.Context, gen GenerationProvider, chunks []Chunk, manualOrder []int, question, model string, sink EventSink) (string, []string, error) {
	logEvent(sink, "INFO", "generating expected answer", nil)

	selected := make([]string, 0, len(manualOrder))
	for _, idx := range manualOrder {
		if idx >= 0 && idx < len(chunks) {
			selected = append(selected, chunks[idx].Content)
		}
	}

	if model == "" {
		model = DefaultExpectedModel
	}

	contextText := buildContext(selected)
	answer, err := gen.Generate(ctx, strictSystemPrompt, userPrompt(contextText, question), model)
	if err != nil {
		return "", selected, fmt.Errorf("rag: generate expected answer: %w", err)
	}

	if strings.TrimSpace(answer) == notFoundSentinel && len(selected) > 0 {
		logEvent(sink, "INFO", "fallback triggered; retrying with summarization prompt", nil)
		answer, err = gen.Generate(ctx, gentleSystemPrompt, userPrompt(contextText, question), model)
		if err != nil {
			return "", selected, fmt.Errorf("rag: generate expected answer (retry): %w", err)
		}
	}

	logEvent(sink, "INFO", "expected answer generated", map[string]any{"length": len(answer)})
	return answer, selected, nil
}
