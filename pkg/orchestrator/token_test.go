package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("secret")
	now := time.Now()

	token, err := issuer.Issue("sess-1", "proj-1", "generation", now)
	require.NoError(t, err)

	sessionID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sessionID)
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret")
	token, err := issuer.Issue("sess-1", "proj-1", "generation", time.Now())
	require.NoError(t, err)

	other := NewTokenIssuer("different-secret")
	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("secret")
	past := time.Now().Add(-time.Hour)

	token, err := issuer.Issue("sess-1", "proj-1", "generation", past)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)
}
