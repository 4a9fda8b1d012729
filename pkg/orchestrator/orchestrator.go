package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/norma-dev/levelapp/pkg/model"
	"github.com/norma-dev/levelapp/pkg/ratelimit"
)

// DefaultRateLimitPerMinute is ORCH_RATE_LIMIT_PER_MIN's default.
const DefaultRateLimitPerMinute = 10

// DefaultSessionTTL is ORCH_SESSION_TTL_MIN's default.
const DefaultSessionTTL = 15 * time.Minute

// Options configures an Orchestrator.
type Options struct {
	// RateLimitPerMinute is the per-project cap on prepare_workflow calls
	// within a rolling 60-second window. Zero selects the default (10).
	RateLimitPerMinute int

	// SessionTTL is how long a minted session remains valid. Zero selects
	// the default (15 minutes).
	SessionTTL time.Duration

	// RedirectTemplates maps a workflow type to a URL template containing
	// "${session_id}".
	RedirectTemplates map[model.WorkflowType]string
}

// Orchestrator implements the verify->init->launch state machine.
type Orchestrator struct {
	opts       Options
	rateLimit  *ratelimit.Window
	store      SessionStore
	tokens     *TokenIssuer
	verifiers  map[model.WorkflowType]Verifier
	now        func() time.Time
	newSession func() string
}

// New constructs an Orchestrator. secret is the HS256 signing key for
// launch tokens (ORCHESTRATOR_JWT_SECRET).
func New(store SessionStore, secret string, verifiers map[model.WorkflowType]Verifier, opts Options) *Orchestrator {
	limitPerMin := opts.RateLimitPerMinute
	if limitPerMin <= 0 {
		limitPerMin = DefaultRateLimitPerMinute
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	opts.RateLimitPerMinute = limitPerMin
	opts.SessionTTL = ttl

	return &Orchestrator{
		opts:       opts,
		rateLimit:  ratelimit.NewWindow(time.Minute, limitPerMin),
		store:      store,
		tokens:     NewTokenIssuer(secret),
		verifiers:  verifiers,
		now:        time.Now,
		newSession: uuid.NewString,
	}
}

// PrepareWorkflow is the orchestrator's single top-level operation,
// implementing the received -> rate_limiter -> idempotency -> verify ->
// init_session -> issue_token -> launched state machine. It never returns a
// Go error for workflow-level failures — only LaunchResponse.Success=false
// with codes/reasons explaining why.
func (o *Orchestrator) PrepareWorkflow(ctx context.Context, projectID string, workflowType model.WorkflowType, seed map[string]any) model.LaunchResponse {
	if !o.rateLimit.Allow(projectID) {
		return model.LaunchResponse{
			Success: false,
			Verification: &model.VerificationResult{
				Ready:   false,
				Reasons: []string{"rate limit exceeded"},
				Codes:   []model.ErrorCode{model.CodeRateLimited},
			},
		}
	}

	seedHash, err := model.SeedHash(seed)
	if err != nil {
		return o.systemError(fmt.Sprintf("seed hashing failed: %v", err))
	}

	if existing, ok := o.store.FindBy(projectID, workflowType, seedHash); ok {
		return o.issueResponse(existing, nil)
	}

	verifier, knownType := o.verifiers[workflowType]
	if !knownType {
		return model.LaunchResponse{
			Success: false,
			Verification: &model.VerificationResult{
				Ready:   false,
				Reasons: []string{fmt.Sprintf("unknown workflow_type %q", workflowType)},
				Codes:   []model.ErrorCode{model.CodeValidationError},
			},
		}
	}

	verification := verifier.Verify(ctx, projectID, seed)
	if !verification.Ready {
		return model.LaunchResponse{Success: false, Verification: &verification}
	}

	now := o.now()
	session := model.WorkflowSession{
		SessionID:    o.newSession(),
		ProjectID:    projectID,
		WorkflowType: workflowType,
		SeedHash:     seedHash,
		Context:      buildContext(string(workflowType), seed),
		Status:       model.SessionReady,
		CreatedAt:    now,
		ExpiresAt:    now.Add(o.opts.SessionTTL),
	}
	if err := o.store.Put(session); err != nil {
		return o.systemError(fmt.Sprintf("session persistence failed: %v", err))
	}

	return o.issueResponse(session, &verification)
}

// issueResponse mints a fresh launch token for an existing or just-minted
// session without mutating the session itself.
func (o *Orchestrator) issueResponse(session model.WorkflowSession, verification *model.VerificationResult) model.LaunchResponse {
	token, err := o.tokens.Issue(session.SessionID, session.ProjectID, string(session.WorkflowType), o.now())
	if err != nil {
		return o.systemError(fmt.Sprintf("token issuance failed: %v", err))
	}

	return model.LaunchResponse{
		Success:      true,
		SessionID:    session.SessionID,
		LaunchToken:  token,
		RedirectPath: o.redirectPath(session.WorkflowType, session.SessionID),
		Verification: verification,
	}
}

func (o *Orchestrator) redirectPath(workflowType model.WorkflowType, sessionID string) string {
	template, ok := o.opts.RedirectTemplates[workflowType]
	if !ok {
		return ""
	}
	return strings.ReplaceAll(template, "${session_id}", sessionID)
}

func (o *Orchestrator) systemError(detail string) model.LaunchResponse {
	return model.LaunchResponse{
		Success: false,
		Verification: &model.VerificationResult{
			Ready:   false,
			Reasons: []string{detail},
			Codes:   []model.ErrorCode{model.CodeSystemError},
		},
	}
}
