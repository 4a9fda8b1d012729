// Package simulator implements the conversation simulator: it drives a
// target agent through a ConversationBatch over HTTP and scores the
// agent's replies with the evaluation service's configured judges.
// Grounded on pkg/scanner (bounded-concurrency errgroup fan-out over
// probes).
package simulator

import "time"

// RequestTimeout is the per-turn agent HTTP call timeout (900s).
const RequestTimeout = 900 * time.Second

// EndpointDescriptor configures the target agent for a simulator run.
type EndpointDescriptor struct {
	// URL is the target agent's HTTP endpoint.
	URL string

	// Headers are sent on every request (e.g. Authorization, Content-Type
	// overrides).
	Headers map[string]string

	// PayloadTemplate, when set, is a JSON-ish mapping whose string leaves
	// support "${var}" substitution over a per-turn variable mapping (at
	// minimum "user_message"). When nil, the default payload is
	// {"prompt": "<user_message>"}.
	PayloadTemplate map[string]any
}

// Options configures a Simulator's concurrency bounds.
type Options struct {
	// ScenarioConcurrency bounds how many scenarios run at once. The
	// default equals the batch size (i.e. unbounded within the batch);
	// RunBatch applies that default when this is left at zero.
	ScenarioConcurrency int
}
