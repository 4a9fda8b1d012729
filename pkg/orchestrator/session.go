// Package orchestrator implements the Workflow Orchestrator: a
// verify->init->launch state machine gating every evaluation run behind
// idempotency and a per-project rate limit, minting short-lived signed
// launch tokens. Sweeper loop grounded on the tarsy project's
// pkg/cleanup.Service background-retention pattern.
package orchestrator

import (
	"sync"
	"time"

	"github.com/norma-dev/levelapp/pkg/model"
)

// SessionStore is the orchestrator's pluggable session backend. Implementers
// must not assume a single process.
type SessionStore interface {
	Put(session model.WorkflowSession) error
	Get(sessionID string) (model.WorkflowSession, bool)
	FindBy(projectID string, workflowType model.WorkflowType, seedHash string) (model.WorkflowSession, bool)
	DeleteExpired(now time.Time) int
}

// MemoryStore is an in-process SessionStore with lazy eviction on every
// access plus an optional background sweeper, for deployments that
// cannot guarantee a running task scheduler.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]model.WorkflowSession
	now      func() time.Time
}

// NewMemoryStore constructs an empty in-process session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]model.WorkflowSession),
		now:      time.Now,
	}
}

// Put inserts or replaces a session.
func (m *MemoryStore) Put(session model.WorkflowSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.SessionID] = session
	return nil
}

// Get returns a non-expired session by id, lazily evicting it first if its
// TTL has passed.
func (m *MemoryStore) Get(sessionID string) (model.WorkflowSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return model.WorkflowSession{}, false
	}
	if !session.ExpiresAt.After(m.now()) {
		delete(m.sessions, sessionID)
		return model.WorkflowSession{}, false
	}
	return session, true
}

// FindBy looks up a non-expired session by its idempotency key.
func (m *MemoryStore) FindBy(projectID string, workflowType model.WorkflowType, seedHash string) (model.WorkflowSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, session := range m.sessions {
		if session.ProjectID != projectID || session.WorkflowType != workflowType || session.SeedHash != seedHash {
			continue
		}
		if !session.ExpiresAt.After(now) {
			delete(m.sessions, id)
			return model.WorkflowSession{}, false
		}
		return session, true
	}
	return model.WorkflowSession{}, false
}

// DeleteExpired evicts every session whose expires_at <= now and reports how
// many were removed. Called by the background sweeper and usable directly
// by callers without one.
func (m *MemoryStore) DeleteExpired(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, session := range m.sessions {
		if !session.ExpiresAt.After(now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Sweeper periodically evicts expired sessions from a SessionStore, for
// deployments that run a task scheduler the orchestrator can rely on.
type Sweeper struct {
	store    SessionStore
	interval time.Duration
	cancel   func()
	done     chan struct{}
}

// NewSweeper constructs a sweeper over store, running every interval.
func NewSweeper(store SessionStore, interval time.Duration) *Sweeper {
	return &Sweeper{store: store, interval: interval}
}

// Start launches the background eviction loop. Calling Start twice is a
// no-op.
func (s *Sweeper) Start() {
	if s.cancel != nil {
		return
	}
	stop := make(chan struct{})
	s.cancel = sync.OnceFunc(func() { close(stop) })
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.store.DeleteExpired(time.Now())
			}
		}
	}()
}

// Stop signals the sweeper loop to exit and waits for it to finish.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}
