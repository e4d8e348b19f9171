package storage

import (
	"context"

	"github.com/poiesic/recall/core"
)

// SearchFilter restricts similarity search to entries whose metadata
// matches every set field exactly. A nil filter matches everything.
type SearchFilter struct {
	Source      string           // Exact source path/URL, empty matches all
	ContentType core.ContentType // Zero value matches all
	Language    string           // Exact language tag, empty matches all
}

// Matches reports whether metadata passes the filter.
func (f *SearchFilter) Matches(md core.Metadata) bool {
	if f == nil {
		return true
	}
	if f.Source != "" && f.Source != md.Source {
		return false
	}
	if f.ContentType != 0 && f.ContentType != md.ContentType {
		return false
	}
	if f.Language != "" && f.Language != md.Language {
		return false
	}
	return true
}

// StoreStats summarizes a store's contents.
type StoreStats struct {
	// VectorCount is the number of stored entries.
	VectorCount int

	// MemoryUsage estimates vector payload bytes
	// (count x dimension x element size). It is monotonically
	// consistent with insert/remove, not byte-exact.
	MemoryUsage int64

	// Dimensions is the embedding dimensionality, 0 while empty.
	Dimensions int
}

// VectorStore holds embedded chunks plus an inverted lexical index.
// Implementations must serialize mutations; concurrent readers may
// proceed between writes but never interleaved with one.
type VectorStore interface {
	// Insert adds one entry: vector, metadata, and lexical postings.
	// A failed insert must not leave a partially updated index.
	Insert(ctx context.Context, entry *core.VectorEntry) error

	// InsertBatch adds entries in order. Equivalent to repeated Insert
	// but implementations may batch the underlying writes.
	InsertBatch(ctx context.Context, entries []*core.VectorEntry) error

	// Search ranks stored entries passing the filter by cosine
	// similarity against the query vector, descending, top k.
	// A zero or dimension-mismatched query scores 0 everywhere.
	Search(ctx context.Context, vector []float32, topK int, filter *SearchFilter) ([]core.RetrievalResult, error)

	// KeywordSearch unions the posting lists of the given terms and
	// ranks entries by hit count. Terms are expanded with the index
	// tokenizer and scores are hitCount over the expanded token count,
	// always within [0,1].
	KeywordSearch(ctx context.Context, terms []string, topK int) ([]core.RetrievalResult, error)

	// Remove deletes every entry belonging to documentID along with its
	// postings. The removal is atomic from the caller's perspective.
	Remove(ctx context.Context, documentID string) error

	// Clear removes all entries and postings.
	Clear(ctx context.Context) error

	// Stats reports entry count, estimated memory usage and dimensionality.
	Stats(ctx context.Context) (StoreStats, error)

	// Close releases the backing resources.
	Close() error
}

// ManifestStore is implemented by store variants that persist the index
// manifest, so a restarted engine knows which documents are indexed.
type ManifestStore interface {
	// PutManifest records or replaces the manifest entry for a document.
	PutManifest(ctx context.Context, entry *core.ManifestEntry) error

	// DeleteManifest removes the manifest entry for documentID.
	// Missing entries are not an error.
	DeleteManifest(ctx context.Context, documentID string) error

	// Manifests returns all manifest entries.
	Manifests(ctx context.Context) ([]*core.ManifestEntry, error)
}
