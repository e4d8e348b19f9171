package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(docID string, idx int, text string, vector []float32) *core.VectorEntry {
	return &core.VectorEntry{
		EntryID:    core.EntryIDFor(docID, idx, text),
		DocumentID: docID,
		Text:       text,
		Vector:     vector,
		Metadata: core.Metadata{
			Source:      docID + ".txt",
			ContentType: core.ContentTypeText,
			ChunkIndex:  idx,
		},
	}
}

func TestInsertAndSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, entry("doc-a", 0, "apples are fruit", []float32{1, 0, 0})))
	require.NoError(t, s.Insert(ctx, entry("doc-b", 0, "cars are vehicles", []float32{0, 1, 0})))

	results, err := s.Search(ctx, []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "apples are fruit", results[0].Content)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestSearch_Filter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	code := entry("doc-code", 0, "func main", []float32{1, 0})
	code.Metadata.ContentType = core.ContentTypeCode
	code.Metadata.Language = "go"
	require.NoError(t, s.Insert(ctx, code))
	require.NoError(t, s.Insert(ctx, entry("doc-text", 0, "plain prose", []float32{1, 0})))

	results, err := s.Search(ctx, []float32{1, 0}, 10, &storage.SearchFilter{ContentType: core.ContentTypeCode})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "func main", results[0].Content)
}

func TestSearch_ZeroAndMismatchedQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, entry("doc-a", 0, "anything", []float32{1, 2, 3})))

	results, err := s.Search(ctx, []float32{0, 0, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, results[0].Score)

	results, err = s.Search(ctx, []float32{1, 2}, 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, results[0].Score)
}

func TestKeywordSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, entry("doc-a", 0, "apples are fruit", []float32{1, 0})))
	require.NoError(t, s.Insert(ctx, entry("doc-b", 0, "cars are vehicles", []float32{0, 1})))

	results, err := s.KeywordSearch(ctx, []string{"apples"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "apples are fruit", results[0].Content)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)

	results, err = s.KeywordSearch(ctx, []string{"apples", "vehicles"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InDelta(t, 0.5, results[0].Score, 1e-9)
}

func TestKeywordSearch_MultiWordTermStaysBounded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, entry("doc-a", 0, "apples are fruit", []float32{1, 0})))

	results, err := s.KeywordSearch(ctx, []string{"apples-fruit"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)

	results, err = s.KeywordSearch(ctx, []string{"apples-vehicles"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.5, results[0].Score, 1e-9)
}

func TestRemove_Completeness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertBatch(ctx, []*core.VectorEntry{
		entry("doc-a", 0, "shared words here", []float32{1, 0}),
		entry("doc-a", 1, "more doc a words", []float32{0, 1}),
		entry("doc-b", 0, "shared words there", []float32{1, 1}),
	}))

	require.NoError(t, s.Remove(ctx, "doc-a"))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.VectorCount)

	results, err := s.KeywordSearch(ctx, []string{"shared"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "shared words there", results[0].Content)
}

func TestRemove_DocumentIDWithSeparator(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// "a" must not be treated as a key prefix of "a:b".
	require.NoError(t, s.Insert(ctx, entry("a", 0, "plain words", []float32{1, 0})))
	require.NoError(t, s.Insert(ctx, entry("a:b", 0, "colon words", []float32{0, 1})))
	require.NoError(t, s.PutManifest(ctx, &core.ManifestEntry{
		DocumentID: "a",
		ChunkCount: 1,
		IndexedAt:  time.Now().UTC(),
	}))
	require.NoError(t, s.PutManifest(ctx, &core.ManifestEntry{
		DocumentID: "a:b",
		ChunkCount: 1,
		IndexedAt:  time.Now().UTC(),
	}))

	require.NoError(t, s.Remove(ctx, "a"))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.VectorCount)

	results, err := s.KeywordSearch(ctx, []string{"colon"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "colon words", results[0].Content)

	entries, err := s.Manifests(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a:b", entries[0].DocumentID)
}

func TestRemove_MissingDocumentIsNoop(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Remove(context.Background(), "ghost"))
}

func TestInsert_ReplaceDoesNotDuplicatePostings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := entry("doc-a", 0, "original words", []float32{1})
	require.NoError(t, s.Insert(ctx, e))

	replacement := &core.VectorEntry{
		EntryID:    e.EntryID,
		DocumentID: e.DocumentID,
		Text:       "replacement words",
		Vector:     []float32{1},
		Metadata:   e.Metadata,
	}
	require.NoError(t, s.Insert(ctx, replacement))

	results, err := s.KeywordSearch(ctx, []string{"original"}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.VectorCount)
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.VectorCount)
	assert.Equal(t, 0, stats.Dimensions)

	require.NoError(t, s.Insert(ctx, entry("doc-a", 0, "first", []float32{1, 2, 3, 4})))
	require.NoError(t, s.Insert(ctx, entry("doc-a", 1, "second", []float32{5, 6, 7, 8})))

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.VectorCount)
	assert.Equal(t, 4, stats.Dimensions)
	assert.Equal(t, int64(2*4*4), stats.MemoryUsage)
}

func TestManifestRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &core.ManifestEntry{
		DocumentID: "doc-a",
		ChunkCount: 3,
		IndexedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	second := &core.ManifestEntry{
		DocumentID: "doc-b",
		ChunkCount: 1,
		IndexedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, s.PutManifest(ctx, first))
	require.NoError(t, s.PutManifest(ctx, second))

	entries, err := s.Manifests(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byID := map[string]*core.ManifestEntry{}
	for _, e := range entries {
		byID[e.DocumentID] = e
	}
	require.Contains(t, byID, "doc-a")
	assert.Equal(t, 3, byID["doc-a"].ChunkCount)
	assert.True(t, first.IndexedAt.Equal(byID["doc-a"].IndexedAt))

	require.NoError(t, s.DeleteManifest(ctx, "doc-a"))
	entries, err = s.Manifests(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc-b", entries[0].DocumentID)
}

func TestRemove_DropsManifest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, entry("doc-a", 0, "body", []float32{1})))
	require.NoError(t, s.PutManifest(ctx, &core.ManifestEntry{
		DocumentID: "doc-a",
		ChunkCount: 1,
		IndexedAt:  time.Now().UTC(),
	}))

	require.NoError(t, s.Remove(ctx, "doc-a"))

	entries, err := s.Manifests(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, entry("doc-a", 0, "content here", []float32{1})))
	require.NoError(t, s.PutManifest(ctx, &core.ManifestEntry{
		DocumentID: "doc-a",
		ChunkCount: 1,
		IndexedAt:  time.Now().UTC(),
	}))
	require.NoError(t, s.Clear(ctx))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.VectorCount)

	entries, err := s.Manifests(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInsert_InvalidEntry(t *testing.T) {
	s := newTestStore(t)
	err := s.Insert(context.Background(), &core.VectorEntry{Text: "no document id"})
	assert.ErrorIs(t, err, core.ErrInvalidEntry)
}

func TestClose(t *testing.T) {
	s, err := NewMemoryStore()
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), storage.ErrStorageClosed)
}
