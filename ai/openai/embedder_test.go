package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/recall/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(host string) *ai.Config {
	return ai.NewConfig(ai.WithHost(host), ai.WithModel("test-model"))
}

func TestEmbedTexts_SortsByResponseIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/embeddings", r.URL.Path)

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Input, 3)

		// Deliberately answer out of order.
		resp := embeddingResponse{Data: []embeddingData{
			{Index: 2, Embedding: []float32{3, 0}},
			{Index: 0, Embedding: []float32{1, 0}},
			{Index: 1, Embedding: []float32{2, 0}},
		}}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	embedder, err := NewEmbedder(testConfig(server.URL))
	require.NoError(t, err)

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, []float32{1, 0}, vectors[0])
	assert.Equal(t, []float32{2, 0}, vectors[1])
	assert.Equal(t, []float32{3, 0}, vectors[2])
}

func TestEmbedTexts_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	embedder, err := NewEmbedder(testConfig(server.URL))
	require.NoError(t, err)

	_, err = embedder.EmbedTexts(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ai.ErrEmbeddingFailed)
}

func TestEmbedTexts_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := embeddingResponse{Data: []embeddingData{
			{Index: 0, Embedding: []float32{1}},
		}}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	embedder, err := NewEmbedder(testConfig(server.URL))
	require.NoError(t, err)

	_, err = embedder.EmbedTexts(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ai.ErrEmbeddingFailed)
}

func TestEmbedTexts_UnreachableHost(t *testing.T) {
	embedder, err := NewEmbedder(testConfig("http://127.0.0.1:1"))
	require.NoError(t, err)

	_, err = embedder.EmbedTexts(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ai.ErrEmbeddingFailed)
}

func TestEmbedText_SingleValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := embeddingResponse{Data: []embeddingData{
			{Index: 0, Embedding: []float32{0.5, 0.5}},
		}}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	embedder, err := NewEmbedder(testConfig(server.URL))
	require.NoError(t, err)

	vector, err := embedder.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vector)
}

func TestEmbedTexts_EmptyBatch(t *testing.T) {
	embedder, err := NewEmbedder(testConfig("http://localhost:9999"))
	require.NoError(t, err)

	vectors, err := embedder.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestConfigNormalization(t *testing.T) {
	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434/"), ai.WithModel("m"))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
}
