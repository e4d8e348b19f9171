package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCachedEmbedder(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		cached, err := ai.NewCachedEmbedder(mock.NewMockEmbedder())
		require.NoError(t, err)
		assert.NotNil(t, cached)
	})

	t.Run("nil inner embedder", func(t *testing.T) {
		_, err := ai.NewCachedEmbedder(nil)
		assert.Equal(t, ai.ErrEmbedderRequired, err)
	})
}

func TestEmbedText_Memoizes(t *testing.T) {
	inner := mock.NewMockEmbedder()
	cached, err := ai.NewCachedEmbedder(inner)
	require.NoError(t, err)

	ctx := context.Background()

	first, err := cached.EmbedText(ctx, "hello world")
	require.NoError(t, err)
	second, err := cached.EmbedText(ctx, "hello world")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.CallCount(), "second call should be served from cache")
	assert.Equal(t, 1, cached.Len())
}

func TestEmbedText_ProviderError(t *testing.T) {
	inner := mock.NewMockEmbedder()
	inner.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, ai.ErrEmbeddingFailed
	}

	cached, err := ai.NewCachedEmbedder(inner)
	require.NoError(t, err)

	_, err = cached.EmbedText(context.Background(), "doomed")
	assert.ErrorIs(t, err, ai.ErrEmbeddingFailed)
	assert.Equal(t, 0, cached.Len(), "failed embeddings must not be cached")
}

func TestEmbedTexts_PartitionPreservesOrder(t *testing.T) {
	inner := mock.NewMockEmbedder()
	cached, err := ai.NewCachedEmbedder(inner)
	require.NoError(t, err)

	ctx := context.Background()

	// Prime the cache with t1 only.
	v1, err := cached.EmbedText(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, 1, inner.CallCount())

	vectors, err := cached.EmbedTexts(ctx, []string{"t1", "t2", "t3"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	// Output order matches input order.
	assert.Equal(t, v1, vectors[0])
	assert.Equal(t, mock.DeterministicVector("t2", mock.Dimension), vectors[1])
	assert.Equal(t, mock.DeterministicVector("t3", mock.Dimension), vectors[2])

	// Only the uncached subset went to the provider, in one call.
	require.Equal(t, 2, inner.CallCount())
	batches := inner.Batches()
	assert.Equal(t, []string{"t2", "t3"}, batches[len(batches)-1])
}

func TestEmbedTexts_DeduplicatesWithinBatch(t *testing.T) {
	inner := mock.NewMockEmbedder()
	cached, err := ai.NewCachedEmbedder(inner)
	require.NoError(t, err)

	vectors, err := cached.EmbedTexts(context.Background(), []string{"dup", "dup", "other"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, vectors[0], vectors[1])

	batches := inner.Batches()
	require.Len(t, batches, 1)
	assert.Equal(t, []string{"dup", "other"}, batches[0])
}

func TestEmbedTexts_AllCached(t *testing.T) {
	inner := mock.NewMockEmbedder()
	cached, err := ai.NewCachedEmbedder(inner)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = cached.EmbedTexts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, 1, inner.CallCount())

	_, err = cached.EmbedTexts(ctx, []string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.CallCount(), "fully cached batch must not reach the provider")
}

func TestEmbedTexts_EmptyBatch(t *testing.T) {
	inner := mock.NewMockEmbedder()
	cached, err := ai.NewCachedEmbedder(inner)
	require.NoError(t, err)

	vectors, err := cached.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Equal(t, 0, inner.CallCount())
}

func TestEmbedTexts_BatchError(t *testing.T) {
	inner := mock.NewMockEmbedder()
	inner.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("backend offline")
	}

	cached, err := ai.NewCachedEmbedder(inner)
	require.NoError(t, err)

	_, err = cached.EmbedTexts(context.Background(), []string{"x"})
	assert.Error(t, err)
	assert.Equal(t, 0, cached.Len())
}

func TestCache_FullFlushEviction(t *testing.T) {
	inner := mock.NewMockEmbedder()
	cached, err := ai.NewCachedEmbedder(inner, ai.WithMaxEntries(2))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = cached.EmbedText(ctx, "one")
	require.NoError(t, err)
	_, err = cached.EmbedText(ctx, "two")
	require.NoError(t, err)
	require.Equal(t, 2, cached.Len())

	// Third insert flushes the table, then stores the new entry.
	_, err = cached.EmbedText(ctx, "three")
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Len())

	// "one" was evicted and hits the provider again, with the same result.
	before := inner.CallCount()
	again, err := cached.EmbedText(ctx, "one")
	require.NoError(t, err)
	assert.Equal(t, before+1, inner.CallCount())
	assert.Equal(t, mock.DeterministicVector("one", mock.Dimension), again)
}
