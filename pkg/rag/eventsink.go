// Package rag implements the RAG pipeline: scrape a source page, let the
// caller select grounding chunks, generate a golden answer, query the
// target chatbot, and score it with NLP metrics and the evaluation
// service. Grounded on original_source/level_core/simluators.
package rag

import (
	"sync"
	"time"
)

// Event is one execution-log entry emitted during a RAG run. Grounded on
// original_source/level_core/simluators/event_collector.py's add_event /
// log_rag_event shape (level, message, timestamp, context).
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
}

// EventSink records RAG execution events. The source's process-wide
// execution_events list is a single-process convenience that doesn't
// survive multiple processes; this interface is the substitution point
// for a real sink.
type EventSink interface {
	Record(event Event)
}

// InProcessSink is the default EventSink: an in-memory, mutex-guarded
// slice, suitable for single-process deployments.
type InProcessSink struct {
	mu     sync.Mutex
	events []Event
	now    func() time.Time
}

// NewInProcessSink constructs an empty in-process event sink.
func NewInProcessSink() *InProcessSink {
	return &InProcessSink{now: time.Now}
}

// Record appends event, stamping its timestamp if unset.
func (s *InProcessSink) Record(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Events returns a snapshot of all recorded events, in insertion order.
func (s *InProcessSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func logEvent(sink EventSink, level, message string, context map[string]any) {
	if sink == nil {
		return
	}
	sink.Record(Event{Level: level, Message: message, Context: context})
}
