package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedText_Deterministic(t *testing.T) {
	e := NewEmbedder()
	ctx := context.Background()

	v1, err := e.EmbedText(ctx, "the quick apple")
	require.NoError(t, err)
	v2, err := e.EmbedText(ctx, "the quick apple")
	require.NoError(t, err)

	require.Len(t, v1, Dimension)
	assert.Equal(t, v1, v2)
}

func TestEmbedText_EmptyInputYieldsZeroVector(t *testing.T) {
	e := NewEmbedder()

	for _, input := range []string{"", "   ", "zzzqqqxxx frobnicate"} {
		v, err := e.EmbedText(context.Background(), input)
		require.NoError(t, err)
		require.Len(t, v, Dimension)
		for i, c := range v {
			assert.Zero(t, c, "component %d for input %q", i, input)
		}
	}
}

func TestEmbedText_UnknownWordsContributeZero(t *testing.T) {
	e := NewEmbedder()
	ctx := context.Background()

	known, err := e.EmbedText(ctx, "apple")
	require.NoError(t, err)

	// Adding an unknown word changes only the divisor: the diluted
	// vector stays parallel to the known one.
	diluted, err := e.EmbedText(ctx, "apple zzzqqqxxx")
	require.NoError(t, err)

	for i := range known {
		assert.InDelta(t, known[i]/2, diluted[i], 1e-6)
	}
}

func TestEmbedTexts_OrderAndLength(t *testing.T) {
	e := NewEmbedder()

	texts := []string{"apple fruit", "car vehicle", ""}
	vectors, err := e.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	single, err := e.EmbedText(context.Background(), "car vehicle")
	require.NoError(t, err)
	assert.Equal(t, single, vectors[1])
}

func TestWordVector_UnitNorm(t *testing.T) {
	v := wordVector("apple")
	var sum float64
	for _, c := range v {
		sum += float64(c) * float64(c)
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}
