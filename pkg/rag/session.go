package rag

import (
	"sync"
	"time"
)

// Session holds one RAG run's state across its three stateful operations,
// grounded on RAGSimulator.sessions in
// original_source/level_core/simluators/rag_simulator.py.
type Session struct {
	ID              string
	PageURL         string
	Chunks          []Chunk
	ChunkSize       int
	ModelID         string
	ChatbotBaseURL  string
	ChatbotChatPath string
	CreatedAt       time.Time

	ExpectedAnswer  string
	SelectedChunks  []string
	Prompt          string
	ChatbotAnswer   string
}

// SessionStore is the RAG pipeline's pluggable session backend.
type SessionStore interface {
	Put(session Session)
	Get(sessionID string) (Session, bool)
	Delete(sessionID string)
}

// MemoryStore is an in-process SessionStore.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

// NewMemoryStore constructs an empty in-process RAG session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) Put(session Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
}

func (m *MemoryStore) Get(sessionID string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	return session, ok
}

func (m *MemoryStore) Delete(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}
