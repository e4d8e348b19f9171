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


// Package recall is a local semantic retrieval engine: documents go in,
// ranked chunks come out. The root package wires the storage, embedding,
// and engine layers into one handle; the subpackages remain usable on
// their own.
package recall

import (
	"context"
	"log/slog"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/ai/local"
	"github.com/poiesic/recall/ai/openai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/engine"
	"github.com/poiesic/recall/ingest"
	"github.com/poiesic/recall/storage"
	badgerstore "github.com/poiesic/recall/storage/badger"
	"github.com/poiesic/recall/storage/memory"
)

// Index is the top-level handle over a vector store, an embedding
// provider behind a cache, and a retrieval engine.
type Index struct {
	store  storage.VectorStore
	engine *engine.Engine
	logger *slog.Logger
}

// IndexOption configures an Index.
type IndexOption func(*indexOptions)

type indexOptions struct {
	aiConfig   *ai.Config
	inMemory   bool
	cacheSize  int
	engineOpts []engine.Option
}

// WithRemoteEmbedding uses an OpenAI-compatible embedding service
// instead of the default offline word-vector model.
func WithRemoteEmbedding(config *ai.Config) IndexOption {
	return func(o *indexOptions) {
		o.aiConfig = config
	}
}

// WithInMemoryStore keeps all vectors in process memory instead of the
// persistent store. Nothing survives Close.
func WithInMemoryStore() IndexOption {
	return func(o *indexOptions) {
		o.inMemory = true
	}
}

// WithCacheEntries sets the embedding cache capacity.
// Default is ai.DefaultCacheEntries.
func WithCacheEntries(n int) IndexOption {
	return func(o *indexOptions) {
		o.cacheSize = n
	}
}

// WithEngineOptions passes options through to the retrieval engine.
func WithEngineOptions(opts ...engine.Option) IndexOption {
	return func(o *indexOptions) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// Open creates or opens an index at filePath. The path is ignored when
// WithInMemoryStore is given.
func Open(filePath string, opts ...IndexOption) (*Index, error) {
	// Apply options
	options := &indexOptions{
		cacheSize: ai.DefaultCacheEntries,
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open store
	var (
		store storage.VectorStore
		err   error
	)
	if options.inMemory {
		store = memory.New()
	} else {
		store, err = badgerstore.Open(filePath)
		if err != nil {
			return nil, err
		}
	}

	// Create embedding provider, remote when configured, offline otherwise
	var embedder ai.Embedder
	if options.aiConfig != nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			store.Close()
			return nil, err
		}
	} else {
		embedder = local.NewEmbedder()
	}

	cached, err := ai.NewCachedEmbedder(embedder, ai.WithMaxEntries(options.cacheSize))
	if err != nil {
		store.Close()
		return nil, err
	}

	eng, err := engine.NewEngine(store, cached, options.engineOpts...)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Index{
		store:  store,
		engine: eng,
		logger: slog.Default(),
	}, nil
}

// Close releases the underlying store.
func (ix *Index) Close() error {
	if err := ix.store.Close(); err != nil {
		ix.logger.Error("error closing store", "err", err)
		return err
	}
	return nil
}

// Engine exposes the retrieval engine for callers needing the full API.
func (ix *Index) Engine() *engine.Engine {
	return ix.engine
}

// NewPipeline creates a batch indexing pipeline over this index.
func (ix *Index) NewPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(ix.engine, opts...)
}

// IndexDocument indexes one document.
func (ix *Index) IndexDocument(ctx context.Context, doc *core.Document) error {
	return ix.engine.IndexDocument(ctx, doc)
}

// IndexDirectory scans root and indexes every document found.
func (ix *Index) IndexDirectory(ctx context.Context, root string, opts ...ingest.Option) (ingest.Result, error) {
	documents, err := ingest.NewScanner().ScanDirectory(root)
	if err != nil {
		return ingest.Result{}, err
	}

	pipeline, err := ix.NewPipeline(opts...)
	if err != nil {
		return ingest.Result{}, err
	}
	defer pipeline.Release()

	return pipeline.IndexAll(ctx, documents)
}

// Retrieve ranks stored chunks against the query semantically.
func (ix *Index) Retrieve(ctx context.Context, query string, topK int, filter *storage.SearchFilter) ([]core.RetrievalResult, error) {
	return ix.engine.Retrieve(ctx, query, topK, filter)
}

// RetrieveWithReranking is Retrieve plus a lexical overlap rerank.
func (ix *Index) RetrieveWithReranking(ctx context.Context, query string, topK int, filter *storage.SearchFilter) ([]core.RetrievalResult, error) {
	return ix.engine.RetrieveWithReranking(ctx, query, topK, filter)
}

// HybridSearch fuses semantic and keyword retrieval.
func (ix *Index) HybridSearch(ctx context.Context, query string, topK int, filter *storage.SearchFilter) ([]core.RetrievalResult, error) {
	return ix.engine.HybridSearch(ctx, query, topK, filter)
}

// RemoveDocument removes a document's chunks from the index.
func (ix *Index) RemoveDocument(ctx context.Context, documentID string) error {
	return ix.engine.RemoveDocument(ctx, documentID)
}

// Clear resets the index.
func (ix *Index) Clear(ctx context.Context) error {
	return ix.engine.Clear(ctx)
}

// Documents lists manifest entries of indexed documents.
func (ix *Index) Documents() []*core.ManifestEntry {
	return ix.engine.Documents()
}

// Stats reports index statistics.
func (ix *Index) Stats(ctx context.Context) (engine.Stats, error) {
	return ix.engine.Stats(ctx)
}
