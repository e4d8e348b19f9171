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


// Package memory provides the in-memory reference implementation of
// storage.VectorStore.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// Store is a mutex-guarded in-memory vector store with an inverted
// lexical index. All mutations are serialized by a write lock; reads
// share a read lock and never observe a partial write.
type Store struct {
	mu         sync.RWMutex
	entries    map[core.ID]*core.VectorEntry
	index      map[string]map[core.ID]struct{} // token -> posting set
	byDocument map[string]map[core.ID]struct{} // documentID -> entry ids
	logger     *slog.Logger
}

var _ storage.VectorStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// New creates an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		entries:    make(map[core.ID]*core.VectorEntry),
		index:      make(map[string]map[core.ID]struct{}),
		byDocument: make(map[string]map[core.ID]struct{}),
		logger:     slog.Default().With("component", "memory-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert adds one entry and its lexical postings.
func (s *Store) Insert(_ context.Context, entry *core.VectorEntry) error {
	if err := core.ValidateEntry(entry); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(entry)
	return nil
}

// InsertBatch adds entries in order under a single write lock.
func (s *Store) InsertBatch(_ context.Context, entries []*core.VectorEntry) error {
	for _, entry := range entries {
		if err := core.ValidateEntry(entry); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		s.insertLocked(entry)
	}
	return nil
}

func (s *Store) insertLocked(entry *core.VectorEntry) {
	// Re-inserting an existing ID replaces the entry; drop the stale
	// postings first so the index never over-covers.
	if old, ok := s.entries[entry.EntryID]; ok {
		s.removeEntryLocked(old)
	}

	s.entries[entry.EntryID] = entry

	for _, token := range storage.UniqueTokens(entry.Text) {
		postings, ok := s.index[token]
		if !ok {
			postings = make(map[core.ID]struct{})
			s.index[token] = postings
		}
		postings[entry.EntryID] = struct{}{}
	}

	docs, ok := s.byDocument[entry.DocumentID]
	if !ok {
		docs = make(map[core.ID]struct{})
		s.byDocument[entry.DocumentID] = docs
	}
	docs[entry.EntryID] = struct{}{}
}

// Search ranks entries passing the filter by cosine similarity.
func (s *Store) Search(_ context.Context, vector []float32, topK int, filter *storage.SearchFilter) ([]core.RetrievalResult, error) {
	if topK <= 0 {
		return []core.RetrievalResult{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]core.RetrievalResult, 0, len(s.entries))
	for _, entry := range s.entries {
		if !filter.Matches(entry.Metadata) {
			continue
		}
		results = append(results, core.RetrievalResult{
			ID:       entry.EntryID,
			Content:  entry.Text,
			Metadata: entry.Metadata,
			Score:    storage.CosineSimilarity(vector, entry.Vector),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// KeywordSearch unions posting lists and ranks by hit count. Terms are
// run through the index tokenizer first, and scores are normalized by
// the expanded token count, so a multi-word term cannot push a score
// past 1. Scores stay within [0,1].
func (s *Store) KeywordSearch(_ context.Context, terms []string, topK int) ([]core.RetrievalResult, error) {
	if topK <= 0 {
		return []core.RetrievalResult{}, nil
	}
	tokens := storage.TokenizeTerms(terms)
	if len(tokens) == 0 {
		return []core.RetrievalResult{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make(map[core.ID]int)
	for _, token := range tokens {
		for id := range s.index[token] {
			hits[id]++
		}
	}

	tokenCount := float64(len(tokens))
	results := make([]core.RetrievalResult, 0, len(hits))
	for id, count := range hits {
		entry := s.entries[id]
		results = append(results, core.RetrievalResult{
			ID:       entry.EntryID,
			Content:  entry.Text,
			Metadata: entry.Metadata,
			Score:    float64(count) / tokenCount,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Remove deletes every entry of documentID and its postings under one
// write lock, so readers never observe a partial removal.
func (s *Store) Remove(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, ok := s.byDocument[documentID]
	if !ok {
		return nil
	}

	for id := range ids {
		if entry, ok := s.entries[id]; ok {
			s.removeEntryLocked(entry)
		}
	}
	delete(s.byDocument, documentID)
	return nil
}

// removeEntryLocked deletes one entry and removes it from every posting
// set it appears in, pruning sets that become empty.
func (s *Store) removeEntryLocked(entry *core.VectorEntry) {
	for _, token := range storage.UniqueTokens(entry.Text) {
		if postings, ok := s.index[token]; ok {
			delete(postings, entry.EntryID)
			if len(postings) == 0 {
				delete(s.index, token)
			}
		}
	}
	if docs, ok := s.byDocument[entry.DocumentID]; ok {
		delete(docs, entry.EntryID)
		if len(docs) == 0 {
			delete(s.byDocument, entry.DocumentID)
		}
	}
	delete(s.entries, entry.EntryID)
}

// Clear removes all entries and postings.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[core.ID]*core.VectorEntry)
	s.index = make(map[string]map[core.ID]struct{})
	s.byDocument = make(map[string]map[core.ID]struct{})
	return nil
}

// Stats reports entry count, estimated vector bytes and dimensionality.
func (s *Store) Stats(_ context.Context) (storage.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := storage.StoreStats{VectorCount: len(s.entries)}
	for _, entry := range s.entries {
		if len(entry.Vector) > 0 {
			stats.Dimensions = len(entry.Vector)
			break
		}
	}
	stats.MemoryUsage = int64(stats.VectorCount) * int64(stats.Dimensions) * 4

	return stats, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
