// Package model holds the data types shared by the simulator, evaluation
// service, orchestrator, and RAG pipeline: conversations, evaluation
// results, and workflow sessions.
package model

// InteractionKind classifies an Interaction's place in a conversation.
type InteractionKind string

const (
	KindOpening     InteractionKind = "opening"
	KindDevelopment InteractionKind = "development"
	KindClosure     InteractionKind = "closure"
)

// RequestFailedReply is the literal agent reply recorded when the transport
// call to the agent endpoint fails (non-2xx or network error).
const RequestFailedReply = "Request failed"

// Interaction is one user turn in a BasicConversation.
type Interaction struct {
	ID                 string         `json:"id"`
	UserMessage        string         `json:"user_message"`
	ReferenceReply     string         `json:"reference_reply"`
	Kind               InteractionKind `json:"kind"`
	ReferenceMetadata  map[string]any `json:"reference_metadata,omitempty"`
	GeneratedMetadata  map[string]any `json:"generated_metadata,omitempty"`
}

// BasicConversation is an ordered sequence of Interactions.
type BasicConversation struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
	Interactions []Interaction `json:"interactions"`
}

// ConversationBatch is the simulator's top-level input: an ordered sequence
// of BasicConversations.
type ConversationBatch struct {
	Conversations []BasicConversation `json:"conversations"`
}
