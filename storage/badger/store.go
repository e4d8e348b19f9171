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


// Package badger provides the persistent BadgerDB implementation of
// storage.VectorStore. Entries are serialized with the MUS format;
// lexical postings and per-document membership are composite keys so
// both can be walked with prefix iterators.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// Store implements storage.VectorStore on top of a BadgerDB backend.
// It also persists the index manifest, so it satisfies
// storage.ManifestStore. The store owns its backend and closes it.
type Store struct {
	backend *Backend
	logger  *slog.Logger
}

var (
	_ storage.VectorStore   = (*Store)(nil)
	_ storage.ManifestStore = (*Store)(nil)
)

// New creates a Store over an open backend.
func New(backend *Backend) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "badger-store"),
	}, nil
}

// Open opens (or creates) a persistent store at dir.
func Open(dir string) (*Store, error) {
	backend, err := OpenBackend(dir, false)
	if err != nil {
		return nil, err
	}
	return New(backend)
}

// Insert adds one entry and its postings in a single transaction.
func (s *Store) Insert(_ context.Context, entry *core.VectorEntry) error {
	if err := core.ValidateEntry(entry); err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := s.insertTx(tx, entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// InsertBatch adds entries in order within a single transaction.
func (s *Store) InsertBatch(_ context.Context, entries []*core.VectorEntry) error {
	for _, entry := range entries {
		if err := core.ValidateEntry(entry); err != nil {
			return err
		}
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			if err := s.insertTx(tx, entry); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// insertTx writes one entry. Re-inserting an existing ID replaces the
// record; the old postings are deleted first so the index never
// over-covers.
func (s *Store) insertTx(tx *badger.Txn, entry *core.VectorEntry) error {
	key := makeEntryKey(entry.EntryID)

	old, err := s.readEntry(tx, key)
	if err != nil {
		return err
	}
	if old != nil {
		if err := s.deletePostingsTx(tx, old); err != nil {
			return err
		}
	}

	if err := tx.Set(key, storage.MarshalEntry(entry)); err != nil {
		return err
	}

	for _, token := range storage.UniqueTokens(entry.Text) {
		if err := tx.Set(makeTokenKey(token, entry.EntryID), nil); err != nil {
			return err
		}
	}

	return tx.Set(makeDocumentKey(entry.DocumentID, entry.EntryID), nil)
}

// Search ranks stored entries passing the filter by cosine similarity.
func (s *Store) Search(_ context.Context, vector []float32, topK int, filter *storage.SearchFilter) ([]core.RetrievalResult, error) {
	if topK <= 0 {
		return []core.RetrievalResult{}, nil
	}

	results := make([]core.RetrievalResult, 0, topK)
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.VectorEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
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
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sortByScore(results)
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// KeywordSearch unions the posting lists of the terms and ranks entries
// by hit count. Terms are run through the index tokenizer first, and
// scores are normalized by the expanded token count, so a multi-word
// term cannot push a score past 1. Scores stay within [0,1].
func (s *Store) KeywordSearch(_ context.Context, terms []string, topK int) ([]core.RetrievalResult, error) {
	if topK <= 0 {
		return []core.RetrievalResult{}, nil
	}
	tokens := storage.TokenizeTerms(terms)
	if len(tokens) == 0 {
		return []core.RetrievalResult{}, nil
	}

	var results []core.RetrievalResult
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		hits := make(map[core.ID]int)
		for _, token := range tokens {
			if err := s.walkPostingsTx(tx, token, hits); err != nil {
				return err
			}
		}

		tokenCount := float64(len(tokens))
		results = make([]core.RetrievalResult, 0, len(hits))
		for id, count := range hits {
			entry, err := s.readEntry(tx, makeEntryKey(id))
			if err != nil {
				return err
			}
			if entry == nil {
				continue
			}
			results = append(results, core.RetrievalResult{
				ID:       entry.EntryID,
				Content:  entry.Text,
				Metadata: entry.Metadata,
				Score:    float64(count) / tokenCount,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sortByScore(results)
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// walkPostingsTx increments hits for every entry in one token's posting list.
func (s *Store) walkPostingsTx(tx *badger.Txn, token string, hits map[core.ID]int) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialTokenKey(token)
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		if id, ok := entryIDFromKey(iter.Item().Key()); ok {
			hits[id]++
		}
	}
	return nil
}

// Remove deletes every entry of documentID, its postings, and the
// document's manifest entry in a single transaction.
func (s *Store) Remove(_ context.Context, documentID string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		// Collect entry IDs first; mutating while iterating the same
		// prefix is asking for trouble.
		var ids []core.ID
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialDocumentKey(documentID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			if id, ok := entryIDFromKey(iter.Item().Key()); ok {
				ids = append(ids, id)
			}
		}
		iter.Close()

		for _, id := range ids {
			key := makeEntryKey(id)
			entry, err := s.readEntry(tx, key)
			if err != nil {
				return err
			}
			if entry == nil {
				continue
			}
			if err := s.deletePostingsTx(tx, entry); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		if err := tx.Delete(makeManifestKey(documentID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// deletePostingsTx removes an entry's token postings and document key.
func (s *Store) deletePostingsTx(tx *badger.Txn, entry *core.VectorEntry) error {
	for _, token := range storage.UniqueTokens(entry.Text) {
		if err := tx.Delete(makeTokenKey(token, entry.EntryID)); err != nil {
			return err
		}
	}
	return tx.Delete(makeDocumentKey(entry.DocumentID, entry.EntryID))
}

// Clear removes all entries, postings, and manifest records.
func (s *Store) Clear(_ context.Context) error {
	return s.backend.DropAll()
}

// Stats reports entry count, estimated vector bytes and dimensionality.
func (s *Store) Stats(_ context.Context) (storage.StoreStats, error) {
	var stats storage.StoreStats
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			stats.VectorCount++
			if stats.Dimensions != 0 {
				continue
			}
			err := iter.Item().Value(func(val []byte) error {
				entry, err := storage.UnmarshalEntry(val)
				if err != nil {
					return err
				}
				stats.Dimensions = len(entry.Vector)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return storage.StoreStats{}, err
	}

	stats.MemoryUsage = int64(stats.VectorCount) * int64(stats.Dimensions) * 4
	return stats, nil
}

// PutManifest records or replaces the manifest entry for a document.
func (s *Store) PutManifest(_ context.Context, entry *core.ManifestEntry) error {
	if entry == nil || entry.DocumentID == "" {
		return fmt.Errorf("%w: manifest entry requires a document id", core.ErrInvalidEntry)
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeManifestKey(entry.DocumentID), storage.MarshalManifestEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteManifest removes the manifest entry for documentID.
func (s *Store) DeleteManifest(_ context.Context, documentID string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeManifestKey(documentID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Manifests returns all manifest entries.
func (s *Store) Manifests(_ context.Context) ([]*core.ManifestEntry, error) {
	var entries []*core.ManifestEntry
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(manifestPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				entry, err := storage.UnmarshalManifestEntry(val)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return entries, err
}

// Close closes the backing database.
func (s *Store) Close() error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return s.backend.Close()
}

// readEntry reads a vector entry from the transaction.
// Returns nil without error when the key does not exist.
func (s *Store) readEntry(tx *badger.Txn, key []byte) (*core.VectorEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.VectorEntry
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		entry, unmarshalErr = storage.UnmarshalEntry(val)
		return unmarshalErr
	})
	return entry, err
}

// sortByScore orders results by score descending.
func sortByScore(results []core.RetrievalResult) {
	slices.SortFunc(results, func(a, b core.RetrievalResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})
}
