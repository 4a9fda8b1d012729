package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/norma-dev/levelapp/pkg/model"
)

func TestNoopSink_AlwaysSucceeds(t *testing.T) {
	var s NoopSink
	if err := s.Persist(context.Background(), &model.BatchResult{}); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

type stubSink struct {
	err   error
	calls int
}

func (s *stubSink) Persist(context.Context, *model.BatchResult) error {
	s.calls++
	return s.err
}

func TestMultiSink_PersistsToAll(t *testing.T) {
	a := &stubSink{}
	b := &stubSink{}
	m := MultiSink{a, b}

	if err := m.Persist(context.Background(), &model.BatchResult{}); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("expected both sinks called once, got a=%d b=%d", a.calls, b.calls)
	}
}

func TestMultiSink_ReturnsFirstError(t *testing.T) {
	wantErr := errors.New("disk full")
	a := &stubSink{err: wantErr}
	b := &stubSink{}
	m := MultiSink{a, b}

	err := m.Persist(context.Background(), &model.BatchResult{})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected %v, got %v", wantErr, err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("expected both sinks still called despite first error, got a=%d b=%d", a.calls, b.calls)
	}
}
