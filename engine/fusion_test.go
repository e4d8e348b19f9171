package engine

import (
	"testing"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(id core.ID, content string, score float64) core.RetrievalResult {
	return core.RetrievalResult{ID: id, Content: content, Score: score}
}

func TestFuseRRF_ScoreMath(t *testing.T) {
	semantic := []core.RetrievalResult{
		result(1, "both lists", 0.9),
		result(2, "semantic only", 0.8),
	}
	keyword := []core.RetrievalResult{
		result(1, "both lists", 1.0),
	}

	fused := fuseRRF(semantic, keyword)
	require.Len(t, fused, 2)

	// id 1: rank 1 in both lists, id 2: rank 2 in one list.
	assert.Equal(t, core.ID(1), fused[0].ID)
	assert.InDelta(t, 1.0/61+1.0/61, fused[0].Score, 1e-12)
	assert.InDelta(t, 1.0/62, fused[1].Score, 1e-12)
}

func TestFuseRRF_BothListsBeatsSingleListAtEqualRank(t *testing.T) {
	// A is rank 1 in the keyword list and rank 2 semantically; B is
	// rank 1 semantically but lexically absent. Presence in both lists
	// must win.
	semantic := []core.RetrievalResult{
		result(2, "B", 0.95),
		result(1, "A", 0.90),
	}
	keyword := []core.RetrievalResult{
		result(1, "A", 1.0),
	}

	fused := fuseRRF(semantic, keyword)
	require.Len(t, fused, 2)
	assert.Equal(t, core.ID(1), fused[0].ID)
	assert.Greater(t, fused[0].Score, fused[1].Score)
}

func TestFuseRRF_EmptyLists(t *testing.T) {
	assert.Empty(t, fuseRRF(nil, nil))
	fused := fuseRRF([]core.RetrievalResult{result(1, "only", 0.5)}, nil)
	require.Len(t, fused, 1)
	assert.InDelta(t, 1.0/61, fused[0].Score, 1e-12)
}
