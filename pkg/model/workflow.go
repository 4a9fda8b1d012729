package model

import "time"

// WorkflowType enumerates the workflow kinds the orchestrator can prepare.
type WorkflowType string

const (
	WorkflowGeneration WorkflowType = "generation"
	WorkflowRAG        WorkflowType = "rag"
	WorkflowExtraction  WorkflowType = "extraction"
)

// SessionStatus is the lifecycle state of a WorkflowSession.
type SessionStatus string

const (
	SessionReady    SessionStatus = "ready"
	SessionConsumed SessionStatus = "consumed"
	SessionExpired  SessionStatus = "expired"
)

// WorkflowSession is the unit of idempotent, TTL-bounded workflow state
// minted by the orchestrator's init phase.
type WorkflowSession struct {
	SessionID    string         `json:"session_id"`
	ProjectID    string         `json:"project_id"`
	WorkflowType WorkflowType   `json:"workflow_type"`
	SeedHash     string         `json:"seed_hash"`
	Context      map[string]any `json:"context"`
	Status       SessionStatus  `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
}

// ErrorCode is the orchestrator's closed error taxonomy.
type ErrorCode string

const (
	CodeConfigMissing     ErrorCode = "CONFIG_MISSING"
	CodeResourceUnavailable ErrorCode = "RESOURCE_UNAVAILABLE"
	CodeConnectivityError ErrorCode = "CONNECTIVITY_ERROR"
	CodePermissionDenied  ErrorCode = "PERMISSION_DENIED"
	CodeValidationError   ErrorCode = "VALIDATION_ERROR"
	CodeRateLimited       ErrorCode = "RATE_LIMITED"
	CodeSystemError       ErrorCode = "SYSTEM_ERROR"
)

// CheckStatus is the outcome of a single verifier check.
type CheckStatus string

const (
	CheckOK   CheckStatus = "ok"
	CheckFail CheckStatus = "fail"
	CheckWarn CheckStatus = "warn"
)

// Check is one named prerequisite probe performed by a verifier.
type Check struct {
	Name   string      `json:"name"`
	Status CheckStatus `json:"status"`
	Detail string      `json:"detail,omitempty"`
}

// VerificationResult is the outcome of running a workflow-type verifier.
type VerificationResult struct {
	Ready   bool        `json:"ready"`
	Checks  []Check     `json:"checks"`
	Reasons []string    `json:"reasons"`
	Codes   []ErrorCode `json:"codes"`
}

// LaunchResponse is the single return value of prepare_workflow; it is
// never accompanied by a raised exception.
type LaunchResponse struct {
	Success       bool                `json:"success"`
	SessionID     string              `json:"session_id,omitempty"`
	LaunchToken   string              `json:"launch_token,omitempty"`
	RedirectPath  string              `json:"redirect_path,omitempty"`
	Verification  *VerificationResult `json:"verification,omitempty"`
}
