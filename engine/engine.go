package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/chunker"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

const (
	// rerankOversample is how many times topK candidates the reranker
	// fetches before re-scoring.
	rerankOversample = 3

	// overlapBonus is the per-term weight of the lexical overlap bonus
	// applied during reranking.
	overlapBonus = 0.1
)

// Stats summarizes the engine's index.
type Stats struct {
	// DocumentCount is the number of indexed documents.
	DocumentCount int

	// ChunkCount is the number of stored chunks across all documents.
	ChunkCount int

	// IndexSize estimates the vector payload size in bytes.
	IndexSize int64
}

// Engine orchestrates chunking, embedding, and storage on the write
// path, and semantic/lexical/hybrid search on the read path.
type Engine struct {
	store    storage.VectorStore
	embedder ai.Embedder
	splitter *chunker.Chunker
	logger   *slog.Logger

	// manifests is non-nil when the store persists the manifest.
	manifests storage.ManifestStore

	mu       sync.RWMutex
	manifest map[string]*core.ManifestEntry
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithChunker sets a custom chunker.
// Default is chunker.New().
func WithChunker(splitter *chunker.Chunker) Option {
	return func(e *Engine) error {
		if splitter != nil {
			e.splitter = splitter
		}
		return nil
	}
}

// NewEngine creates an engine over a store and an embedder. When the
// store also persists the index manifest, the manifest is loaded so
// document counts survive restarts.
func NewEngine(store storage.VectorStore, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		store:    store,
		embedder: embedder,
		splitter: chunker.New(),
		logger:   slog.Default().With("component", "engine"),
		manifest: make(map[string]*core.ManifestEntry),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if manifests, ok := store.(storage.ManifestStore); ok {
		e.manifests = manifests
		entries, err := manifests.Manifests(context.Background())
		if err != nil {
			return nil, fmt.Errorf("loading index manifest: %w", err)
		}
		for _, entry := range entries {
			e.manifest[entry.DocumentID] = entry
		}
	}

	return e, nil
}

// IndexDocument chunks, embeds, and stores one document. Re-indexing a
// document ID replaces its prior chunks. Embedding failure aborts the
// operation before any store mutation, so a document is never left
// partially indexed.
func (e *Engine) IndexDocument(ctx context.Context, doc *core.Document) error {
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}

	chunks := e.splitter.Chunk(doc.Content, doc.Metadata)

	var vectors [][]float32
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Text
		}

		var err error
		vectors, err = e.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding document %q: %w", doc.ID, err)
		}
		if len(vectors) != len(chunks) {
			return fmt.Errorf("%w: got %d vectors for %d chunks", ai.ErrEmbeddingFailed, len(vectors), len(chunks))
		}
	}

	// All embedding round-trips are done; mutate the store.
	if err := e.store.Remove(ctx, doc.ID); err != nil {
		return fmt.Errorf("removing prior chunks of %q: %w", doc.ID, err)
	}

	entries := make([]*core.VectorEntry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = &core.VectorEntry{
			EntryID:    core.EntryIDFor(doc.ID, i, chunk.Text),
			DocumentID: doc.ID,
			Text:       chunk.Text,
			Vector:     vectors[i],
			Metadata:   chunk.Metadata,
		}
	}
	if err := e.store.InsertBatch(ctx, entries); err != nil {
		return fmt.Errorf("storing chunks of %q: %w", doc.ID, err)
	}

	manifestEntry := &core.ManifestEntry{
		DocumentID: doc.ID,
		ChunkCount: len(chunks),
		IndexedAt:  time.Now().UTC(),
	}
	if e.manifests != nil {
		if err := e.manifests.PutManifest(ctx, manifestEntry); err != nil {
			return fmt.Errorf("recording manifest for %q: %w", doc.ID, err)
		}
	}

	e.mu.Lock()
	e.manifest[doc.ID] = manifestEntry
	e.mu.Unlock()

	e.logger.Info("indexed document", "documentID", doc.ID, "chunks", len(chunks))
	return nil
}

// Retrieve embeds the query and ranks stored chunks by cosine
// similarity. When the embedder is unavailable the result set is empty
// rather than an error.
func (e *Engine) Retrieve(ctx context.Context, query string, topK int, filter *storage.SearchFilter) ([]core.RetrievalResult, error) {
	return e.RetrieveWithMonitor(ctx, query, topK, filter, nil)
}

// RetrieveWithMonitor is Retrieve with monitoring callbacks at each
// stage of the retrieval process.
func (e *Engine) RetrieveWithMonitor(ctx context.Context, query string, topK int, filter *storage.SearchFilter, monitor RetrievalMonitor) ([]core.RetrievalResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	results, ok, err := e.semanticSearch(ctx, query, topK, filter, monitor)
	if err != nil {
		return nil, err
	}
	if !ok {
		monitor.Finish(nil)
		return []core.RetrievalResult{}, nil
	}

	monitor.Finish(results)
	return results, nil
}

// semanticSearch embeds the query and searches the store. The second
// return value is false when the embedder was unavailable and the
// search was skipped.
func (e *Engine) semanticSearch(ctx context.Context, query string, topK int, filter *storage.SearchFilter, monitor RetrievalMonitor) ([]core.RetrievalResult, bool, error) {
	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		e.logger.Warn("embedding unavailable, degrading to empty results", "query", query, "err", err)
		monitor.DegradedRetrieval(err)
		return nil, false, nil
	}

	results, err := e.store.Search(ctx, vector, topK, filter)
	if err != nil {
		e.logger.Error("error searching store", "err", err)
		return nil, false, err
	}
	monitor.AfterSemanticSearch(results)
	return results, true, nil
}

// RetrieveWithReranking retrieves 3x topK candidates semantically, then
// reranks them with a lexical overlap bonus: each distinct query term
// appearing in a candidate adds 0.1 to its score. A cheap proxy for a
// cross-encoder, not a learned reranker.
func (e *Engine) RetrieveWithReranking(ctx context.Context, query string, topK int, filter *storage.SearchFilter) ([]core.RetrievalResult, error) {
	if topK <= 0 {
		return []core.RetrievalResult{}, nil
	}

	candidates, err := e.Retrieve(ctx, query, rerankOversample*topK, filter)
	if err != nil {
		return nil, err
	}

	queryTerms := storage.UniqueTokens(query)
	for i := range candidates {
		overlap := 0
		docTerms := make(map[string]struct{})
		for _, token := range storage.UniqueTokens(candidates[i].Content) {
			docTerms[token] = struct{}{}
		}
		for _, term := range queryTerms {
			if _, ok := docTerms[term]; ok {
				overlap++
			}
		}
		candidates[i].Score += overlapBonus * float64(overlap)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// HybridSearch runs semantic and keyword retrieval independently and
// fuses the two ranked lists with Reciprocal Rank Fusion. When the
// embedder is unavailable the keyword list alone feeds the fusion.
func (e *Engine) HybridSearch(ctx context.Context, query string, topK int, filter *storage.SearchFilter) ([]core.RetrievalResult, error) {
	return e.HybridSearchWithMonitor(ctx, query, topK, filter, nil)
}

// HybridSearchWithMonitor is HybridSearch with monitoring callbacks.
func (e *Engine) HybridSearchWithMonitor(ctx context.Context, query string, topK int, filter *storage.SearchFilter, monitor RetrievalMonitor) ([]core.RetrievalResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	if topK <= 0 {
		monitor.Finish(nil)
		return []core.RetrievalResult{}, nil
	}

	semantic, _, err := e.semanticSearch(ctx, query, topK, filter, monitor)
	if err != nil {
		return nil, err
	}

	keyword, err := e.store.KeywordSearch(ctx, storage.Tokenize(query), topK)
	if err != nil {
		e.logger.Error("error running keyword search", "err", err)
		return nil, err
	}
	monitor.AfterKeywordSearch(keyword)

	fused := fuseRRF(semantic, keyword)
	monitor.AfterFusion(fused)

	if len(fused) > topK {
		fused = fused[:topK]
	}
	monitor.Finish(fused)
	return fused, nil
}

// KeywordSearch ranks stored chunks by lexical hit count alone.
func (e *Engine) KeywordSearch(ctx context.Context, query string, topK int) ([]core.RetrievalResult, error) {
	return e.store.KeywordSearch(ctx, storage.Tokenize(query), topK)
}

// RemoveDocument deletes a document's chunks and manifest entry.
func (e *Engine) RemoveDocument(ctx context.Context, documentID string) error {
	if err := e.store.Remove(ctx, documentID); err != nil {
		return err
	}
	if e.manifests != nil {
		if err := e.manifests.DeleteManifest(ctx, documentID); err != nil {
			return err
		}
	}

	e.mu.Lock()
	delete(e.manifest, documentID)
	e.mu.Unlock()
	return nil
}

// Clear resets the store and the manifest.
func (e *Engine) Clear(ctx context.Context) error {
	if err := e.store.Clear(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	e.manifest = make(map[string]*core.ManifestEntry)
	e.mu.Unlock()
	return nil
}

// Documents returns the manifest entries of all indexed documents.
func (e *Engine) Documents() []*core.ManifestEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	entries := make([]*core.ManifestEntry, 0, len(e.manifest))
	for _, entry := range e.manifest {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DocumentID < entries[j].DocumentID
	})
	return entries
}

// Stats reports document count from the manifest and chunk count and
// index size from the underlying store.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	storeStats, err := e.store.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}

	e.mu.RLock()
	documents := len(e.manifest)
	e.mu.RUnlock()

	return Stats{
		DocumentCount: documents,
		ChunkCount:    storeStats.VectorCount,
		IndexSize:     storeStats.MemoryUsage,
	}, nil
}
