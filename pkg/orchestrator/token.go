package orchestrator

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenTTL is the launch-token lifetime (exactly 5 minutes).
const tokenTTL = 5 * time.Minute

// launchClaims is the signed payload of a launch token.
type launchClaims struct {
	SessionID    string `json:"session_id"`
	ProjectID    string `json:"project_id"`
	WorkflowType string `json:"workflow_type"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 launch tokens over a process secret.
// No pack library provides JWT signing; golang-jwt/jwt/v5 is the sole
// out-of-pack dependency this module adds (confirmed absent from every
// example repo's go.mod/go.sum).
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer constructs an issuer signing with secret.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Issue mints a fresh launch token for session, valid for exactly 5 minutes
// from now. Every token carries a unique jti, so two tokens for the same
// session differ even when issued within the same second.
func (t *TokenIssuer) Issue(sessionID, projectID string, workflowType string, now time.Time) (string, error) {
	claims := launchClaims{
		SessionID:    sessionID,
		ProjectID:    projectID,
		WorkflowType: workflowType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{"orchestrator"},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("orchestrator: sign launch token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a launch token, returning its session id on
// success.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &launchClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithAudience("orchestrator"), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("orchestrator: invalid launch token: %w", err)
	}
	if !parsed.Valid {
		return "", fmt.Errorf("orchestrator: launch token failed validation")
	}
	return claims.SessionID, nil
}
