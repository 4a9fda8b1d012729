package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/norma-dev/levelapp/pkg/model"
)

// probeBudget is the hard wall-clock budget for every verifier's external
// probes.
const probeBudget = 2 * time.Second

// Verifier checks a workflow_type's prerequisites before a session is
// minted. Every verifier runs its checks in a fixed order, accumulating all
// failures rather than short-circuiting — except the authorization check,
// which always runs first and short-circuits on denial.
type Verifier interface {
	Verify(ctx context.Context, projectID string, seed map[string]any) model.VerificationResult
}

// AuthChecker decides whether a project is authorized to run a given
// workflow type. Supplied by the caller; the orchestrator ships a
// permissive default (every project authorized) since project
// authorization policy lives with an external collaborator.
type AuthChecker func(projectID string, workflowType model.WorkflowType) bool

// AllowAll is the permissive default AuthChecker.
func AllowAll(string, model.WorkflowType) bool { return true }

// ProviderKeyChecker reports whether the named judge provider has a
// configured API key.
type ProviderKeyChecker func(provider string) bool

type verifierBase struct {
	auth   AuthChecker
	client *http.Client
}

func newVerifierBase(auth AuthChecker) verifierBase {
	return verifierBase{auth: auth, client: &http.Client{Timeout: probeBudget}}
}

// authCheck runs the project-authorization check that always runs first and
// short-circuits the rest of the verifier on denial.
func (v verifierBase) authCheck(projectID string, workflowType model.WorkflowType) (model.Check, bool) {
	if v.auth(projectID, workflowType) {
		return model.Check{Name: "authorization", Status: model.CheckOK}, true
	}
	return model.Check{Name: "authorization", Status: model.CheckFail, Detail: "project not authorized"}, false
}

// headCheck HEADs url with the verifier's wall-clock budget, treating any
// 2xx/3xx as ok and anything else (including a timeout) as a failure with
// CONNECTIVITY_ERROR.
func (v verifierBase) headCheck(ctx context.Context, name, url string) model.Check {
	ctx, cancel := context.WithTimeout(ctx, probeBudget)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return model.Check{Name: name, Status: model.CheckFail, Detail: err.Error()}
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return model.Check{Name: name, Status: model.CheckFail, Detail: fmt.Sprintf("connectivity: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return model.Check{Name: name, Status: model.CheckFail, Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
	return model.Check{Name: name, Status: model.CheckOK}
}

// GenerationVerifier implements the "generation" verifier: authorization,
// provider API keys present, optional seed.endpoint reachability.
type GenerationVerifier struct {
	verifierBase
	hasProviderKey ProviderKeyChecker
}

// NewGenerationVerifier constructs the generation-workflow verifier.
func NewGenerationVerifier(auth AuthChecker, hasProviderKey ProviderKeyChecker) *GenerationVerifier {
	return &GenerationVerifier{verifierBase: newVerifierBase(auth), hasProviderKey: hasProviderKey}
}

func (g *GenerationVerifier) Verify(ctx context.Context, projectID string, seed map[string]any) model.VerificationResult {
	result := model.VerificationResult{Ready: true}

	authCheck, ok := g.authCheck(projectID, model.WorkflowGeneration)
	result.Checks = append(result.Checks, authCheck)
	if !ok {
		return fail(result, "project not authorized", model.CodePermissionDenied)
	}

	providerCheck := model.Check{Name: "provider_api_keys", Status: model.CheckOK}
	if g.hasProviderKey != nil {
		if provider, _ := seed["provider"].(string); provider == "" || !g.hasProviderKey(provider) {
			providerCheck = model.Check{Name: "provider_api_keys", Status: model.CheckFail, Detail: "no api key configured for provider"}
			result = fail(result, "provider api key missing", model.CodeConfigMissing)
		}
	}
	result.Checks = append(result.Checks, providerCheck)

	if endpoint, ok := seed["endpoint"].(string); ok && endpoint != "" {
		check := g.headCheck(ctx, "endpoint_reachable", endpoint)
		result.Checks = append(result.Checks, check)
		if check.Status == model.CheckFail {
			result = fail(result, "endpoint not reachable", model.CodeConnectivityError)
		}
	}

	return result
}

// RAGVerifier implements the "rag" verifier: authorization, optional
// source_url reachability, RAG dependencies importable.
type RAGVerifier struct {
	verifierBase
	ragAvailable bool
}

// NewRAGVerifier constructs the rag-workflow verifier. ragAvailable reports
// whether the RAG pipeline's dependencies (scraper, NLP metrics) are usable
// in this deployment.
func NewRAGVerifier(auth AuthChecker, ragAvailable bool) *RAGVerifier {
	return &RAGVerifier{verifierBase: newVerifierBase(auth), ragAvailable: ragAvailable}
}

func (r *RAGVerifier) Verify(ctx context.Context, projectID string, seed map[string]any) model.VerificationResult {
	result := model.VerificationResult{Ready: true}

	authCheck, ok := r.authCheck(projectID, model.WorkflowRAG)
	result.Checks = append(result.Checks, authCheck)
	if !ok {
		return fail(result, "project not authorized", model.CodePermissionDenied)
	}

	if sourceURL, ok := seed["source_url"].(string); ok && sourceURL != "" {
		check := r.headCheck(ctx, "source_url_reachable", sourceURL)
		result.Checks = append(result.Checks, check)
		if check.Status == model.CheckFail {
			result = fail(result, "source url not reachable", model.CodeConnectivityError)
		}
	}

	depsCheck := model.Check{Name: "rag_dependencies", Status: model.CheckOK}
	if !r.ragAvailable {
		depsCheck = model.Check{Name: "rag_dependencies", Status: model.CheckFail, Detail: "rag pipeline unavailable"}
		result = fail(result, "rag dependencies unavailable", model.CodeResourceUnavailable)
	}
	result.Checks = append(result.Checks, depsCheck)

	return result
}

// ExtractionVerifier implements the "extraction" verifier: a conscious
// stub, always not-ready.
type ExtractionVerifier struct{}

// NewExtractionVerifier constructs the always-unready extraction verifier.
func NewExtractionVerifier() *ExtractionVerifier { return &ExtractionVerifier{} }

func (ExtractionVerifier) Verify(ctx context.Context, projectID string, seed map[string]any) model.VerificationResult {
	return model.VerificationResult{
		Ready:   false,
		Checks:  []model.Check{{Name: "extraction_support", Status: model.CheckFail, Detail: "not implemented"}},
		Reasons: []string{"extraction workflows are not implemented"},
		Codes:   []model.ErrorCode{model.CodeResourceUnavailable},
	}
}

// fail appends a failure reason/code to result and marks it not-ready,
// without discarding checks already accumulated (verifiers never
// short-circuit on a non-authorization failure).
func fail(result model.VerificationResult, reason string, code model.ErrorCode) model.VerificationResult {
	result.Ready = false
	result.Reasons = append(result.Reasons, reason)
	result.Codes = append(result.Codes, code)
	return result
}
