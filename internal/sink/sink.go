// Package sink abstracts persistence of a completed BatchResult away from
// the simulator itself, grounded on pkg/results (WriteJSONL plus the
// ScanResult/Summary envelope).
package sink

import (
	"context"

	"github.com/norma-dev/levelapp/pkg/model"
)

// Sink persists a completed batch run. Implementations must not mutate
// result.
type Sink interface {
	Persist(ctx context.Context, result *model.BatchResult) error
}

// NoopSink discards every result. Useful as a default when no persistence
// backend is configured, or in tests that don't care about output.
type NoopSink struct{}

func (NoopSink) Persist(context.Context, *model.BatchResult) error { return nil }

// MultiSink fans a single Persist call out to every wrapped sink, without
// short-circuiting on a failure, and returns the first error encountered.
type MultiSink []Sink

func (m MultiSink) Persist(ctx context.Context, result *model.BatchResult) error {
	var firstErr error
	for _, s := range m {
		if err := s.Persist(ctx, result); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
