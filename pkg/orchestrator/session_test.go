package orchestrator

import (
	"testing"
	"time"

	"github.com/norma-dev/levelapp/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_LazyEvictionOnGet(t *testing.T) {
	store := NewMemoryStore()
	fixed := time.Now()
	store.now = func() time.Time { return fixed }

	require.NoError(t, store.Put(model.WorkflowSession{
		SessionID: "s1",
		ExpiresAt: fixed.Add(-time.Second),
	}))

	_, ok := store.Get("s1")
	assert.False(t, ok)
}

func TestMemoryStore_FindByMatchesIdempotencyKey(t *testing.T) {
	store := NewMemoryStore()
	fixed := time.Now()
	store.now = func() time.Time { return fixed }

	session := model.WorkflowSession{
		SessionID:    "s1",
		ProjectID:    "P",
		WorkflowType: model.WorkflowGeneration,
		SeedHash:     "abc123",
		ExpiresAt:    fixed.Add(time.Minute),
	}
	require.NoError(t, store.Put(session))

	found, ok := store.FindBy("P", model.WorkflowGeneration, "abc123")
	require.True(t, ok)
	assert.Equal(t, "s1", found.SessionID)

	_, ok = store.FindBy("P", model.WorkflowRAG, "abc123")
	assert.False(t, ok)
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	require.NoError(t, store.Put(model.WorkflowSession{SessionID: "expired", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.Put(model.WorkflowSession{SessionID: "alive", ExpiresAt: now.Add(time.Minute)}))

	removed := store.DeleteExpired(now)
	assert.Equal(t, 1, removed)

	_, ok := store.Get("alive")
	assert.True(t, ok)
}
