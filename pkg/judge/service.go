package judge

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/norma-dev/levelapp/pkg/model"
	"github.com/norma-dev/levelapp/pkg/retry"
)

// Service dispatches evaluate_response calls to configured provider
// judges, applying a uniform retry policy and deterministic
// post-processing. Safe for concurrent use.
type Service struct {
	mu      sync.RWMutex
	judges  map[string]Judge
	configs map[string]model.EvaluationConfig
}

// NewService creates an empty evaluation service; providers are registered
// via SetConfig.
func NewService() *Service {
	return &Service{
		judges:  make(map[string]Judge),
		configs: make(map[string]model.EvaluationConfig),
	}
}

// SetConfig registers or atomically replaces a provider's configuration,
// instantiating its Judge from the global Registry.
func (s *Service) SetConfig(provider string, cfg model.EvaluationConfig) error {
	j, err := Registry.Create(provider, configToMap(cfg))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.judges[provider] = j
	s.configs[provider] = cfg
	return nil
}

// Providers returns the names of all currently configured judge providers,
// in no particular order.
func (s *Service) Providers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.judges))
	for name := range s.judges {
		names = append(names, name)
	}
	return names
}

// retryConfig is the judge-call backoff policy: up to 3 attempts, wait
// min(max(2^(attempt-1), 1s), 8s), retrying only transport errors.
var retryConfig = retry.Config{
	MaxAttempts:  3,
	InitialDelay: 1 * time.Second,
	MaxDelay:     8 * time.Second,
	Multiplier:   2.0,
	RetryableFunc: func(err error) bool {
		return isTransportError(err)
	},
}

func isTransportError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded)
}

// EvaluateResponse dispatches one (reply, reference, user message) triple
// to the named provider's judge. It never returns a Go error for judge
// failures — those are materialized as a zero-score EvaluationResult with
// metadata.error set — and only returns an error for an unconfigured
// provider (model.ErrUnknownProvider).
func (s *Service) EvaluateResponse(ctx context.Context, provider, outputText, referenceText, userMessage string) (model.EvaluationResult, error) {
	s.mu.RLock()
	j, ok := s.judges[provider]
	s.mu.RUnlock()
	if !ok {
		return model.EvaluationResult{}, model.ErrUnknownProvider
	}

	prompt := j.BuildPrompt(userMessage, outputText, referenceText)

	var raw map[string]any
	callErr := retry.Do(ctx, retryConfig, func() error {
		var err error
		raw, err = j.CallLLM(ctx, prompt)
		return err
	})

	result := toResult(raw, callErr)
	result.Metadata = ApplyKeyPoints(result.Metadata, userMessage, referenceText, outputText)
	return result, nil
}

// toResult converts a judge's raw mapping (or a retry-exhausted transport
// error) into a well-formed EvaluationResult.
func toResult(raw map[string]any, callErr error) model.EvaluationResult {
	if callErr != nil {
		return model.NewFailedResult(callErr.Error())
	}
	if errText, ok := raw["error"].(string); ok && errText != "" {
		return model.NewFailedResult(errText)
	}

	result := model.EvaluationResult{Metadata: make(map[string]any)}

	switch level := raw["match_level"].(type) {
	case float64:
		result.MatchLevel = clampMatchLevel(int(level))
	case int:
		result.MatchLevel = clampMatchLevel(level)
	}

	if just, ok := raw["justification"].(string); ok {
		result.Justification = just
	}

	if meta, ok := raw["metadata"].(map[string]any); ok {
		for k, v := range meta {
			result.Metadata[k] = v
		}
	}

	return result
}

// clampMatchLevel enforces the 0-5 rubric range. A judge built against a
// legacy 0-3 scale must tag its own metadata with rubric=legacy_0_3; this
// clamp only guards against out-of-range values and does not rescale.
func clampMatchLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 5 {
		return 5
	}
	return level
}
