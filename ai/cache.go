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


package ai

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultCacheEntries is the default memo table capacity.
const DefaultCacheEntries = 10000

// CachedEmbedder wraps an Embedder with a bounded memo table keyed by
// exact input text. Batches are de-duplicated: texts already cached, and
// repeated texts within one batch, produce a single provider call for the
// remaining unique uncached texts.
//
// Eviction is a full flush: when the table reaches capacity the whole
// cache is cleared before new entries are inserted. Crude, but it keeps
// the one invariant that matters: the cache never returns a stale or
// wrong vector for a given exact text.
type CachedEmbedder struct {
	inner      Embedder
	maxEntries int
	logger     *slog.Logger

	mu    sync.Mutex
	cache map[string][]float32
}

var _ Embedder = (*CachedEmbedder)(nil)

// CacheOption configures a CachedEmbedder.
type CacheOption func(*CachedEmbedder) error

// WithMaxEntries sets the memo table capacity.
// Values below 1 fall back to the default.
func WithMaxEntries(n int) CacheOption {
	return func(c *CachedEmbedder) error {
		if n >= 1 {
			c.maxEntries = n
		}
		return nil
	}
}

// WithCacheLogger sets a custom logger.
// Default is slog.Default().
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedEmbedder) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCachedEmbedder creates a caching decorator around inner.
func NewCachedEmbedder(inner Embedder, opts ...CacheOption) (*CachedEmbedder, error) {
	if inner == nil {
		return nil, ErrEmbedderRequired
	}

	c := &CachedEmbedder{
		inner:      inner,
		maxEntries: DefaultCacheEntries,
		logger:     slog.Default().With("component", "embedding-cache"),
		cache:      make(map[string][]float32),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// EmbedText returns the cached vector for text, or consults the inner
// embedder and memoizes the result. The provider round-trip happens
// without holding the cache lock so slow network calls do not block
// unrelated lookups.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	if vector, ok := c.cache[text]; ok {
		c.mu.Unlock()
		return vector, nil
	}
	c.mu.Unlock()

	vector, err := c.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.put(text, vector)
	c.mu.Unlock()

	return vector, nil
}

// EmbedTexts embeds a batch, serving cached entries from the memo table
// and calling the inner embedder once for the unique uncached remainder.
// Output order always matches input order.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))

	// Partition into cached and uncached, de-duplicating the uncached
	// subset while remembering every position each text must fill.
	var uncached []string
	positions := make(map[string][]int)

	c.mu.Lock()
	for i, text := range texts {
		if vector, ok := c.cache[text]; ok {
			results[i] = vector
			continue
		}
		if _, seen := positions[text]; !seen {
			uncached = append(uncached, text)
		}
		positions[text] = append(positions[text], i)
	}
	c.mu.Unlock()

	if len(uncached) == 0 {
		return results, nil
	}

	c.logger.Debug("embedding uncached batch subset",
		"total", len(texts), "uncached", len(uncached))

	vectors, err := c.inner.EmbedTexts(ctx, uncached)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(uncached) {
		return nil, errMismatch(len(uncached), len(vectors))
	}

	c.mu.Lock()
	for i, text := range uncached {
		c.put(text, vectors[i])
		for _, pos := range positions[text] {
			results[pos] = vectors[i]
		}
	}
	c.mu.Unlock()

	return results, nil
}

// Len reports the current number of memoized entries.
func (c *CachedEmbedder) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// put inserts a vector, flushing the whole table first when it is full.
// Callers must hold c.mu.
func (c *CachedEmbedder) put(text string, vector []float32) {
	if _, ok := c.cache[text]; !ok && len(c.cache) >= c.maxEntries {
		c.logger.Debug("embedding cache full, flushing", "entries", len(c.cache))
		c.cache = make(map[string][]float32)
	}
	c.cache[text] = vector
}
