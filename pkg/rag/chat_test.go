package rag_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/norma-dev/levelapp/pkg/httpclient"
	"github.com/norma-dev/levelapp/pkg/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostChat_UsesResponseFieldWhenPresent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "hello there"})
	}))
	defer server.Close()

	reply, err := rag.PostChat(context.Background(), httpclient.New(""), server.URL, "/chat", nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)
}

func TestPostChat_FallsBackToRootPathOnPrimaryFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/chat" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "fallback reply"})
	}))
	defer server.Close()

	reply, err := rag.PostChat(context.Background(), httpclient.New(""), server.URL, "/chat", nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, "fallback reply", reply)
}
