// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package openai implements ai.Embedder against OpenAI-compatible
// embedding APIs (OpenAI, Ollama, LocalAI, vLLM).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/poiesic/recall/ai"
)

// Embedder implements ai.Embedder over the /embeddings HTTP endpoint.
// A whole batch travels in one request.
type Embedder struct {
	config *ai.Config
	client *http.Client
	logger *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// newEmbedder is an internal constructor that returns the concrete type.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Embedder{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// embeddingRequest is the JSON body of one embeddings call.
type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingData is one vector in the response. The service reports the
// input position in Index; response order is not guaranteed.
type embeddingData struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingResponse struct {
	Data []embeddingData `json:"data"`
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts sends the whole batch in one request and returns vectors in
// input order. The response is sorted by its explicit index field first;
// the service is free to return vectors in any order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	body, err := json.Marshal(embeddingRequest{
		Model: e.config.Model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrEmbeddingFailed, err)
	}

	url := e.config.Host + "/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrEmbeddingFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.config.APIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("embedding request failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ai.ErrEmbeddingFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.logger.Error("embedding service returned non-success status", "status", resp.Status)
		return nil, fmt.Errorf("%w: status %s", ai.ErrEmbeddingFailed, resp.Status)
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrEmbeddingFailed, err)
	}

	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d vectors, received %d",
			ai.ErrEmbeddingFailed, len(texts), len(parsed.Data))
	}

	// Restore input order from the explicit index field.
	sort.Slice(parsed.Data, func(i, j int) bool {
		return parsed.Data[i].Index < parsed.Data[j].Index
	})

	vectors := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		if d.Index != i {
			return nil, fmt.Errorf("%w: response index %d out of range", ai.ErrEmbeddingFailed, d.Index)
		}
		vectors[i] = d.Embedding
	}

	return vectors, nil
}
