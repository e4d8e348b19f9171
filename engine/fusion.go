package engine

import (
	"sort"

	"github.com/poiesic/recall/core"
)

// rrfK dampens the weight of top ranks so a document found by several
// lists at middling ranks can beat a document found by one list at
// rank 1. The value 60 is the standard choice from the RRF literature.
const rrfK = 60

// fuseRRF merges ranked result lists with Reciprocal Rank Fusion:
// score(doc) = sum over lists of 1/(k + rank), rank 1-based within each
// list. A document present in several lists always scores strictly
// higher than one present in a single list at the same ranks.
func fuseRRF(lists ...[]core.RetrievalResult) []core.RetrievalResult {
	byID := make(map[core.ID]core.RetrievalResult)
	scores := make(map[core.ID]float64)

	for _, list := range lists {
		for i, result := range list {
			rank := i + 1
			scores[result.ID] += 1.0 / float64(rrfK+rank)
			if _, seen := byID[result.ID]; !seen {
				byID[result.ID] = result
			}
		}
	}

	fused := make([]core.RetrievalResult, 0, len(byID))
	for id, result := range byID {
		result.Score = scores[id]
		fused = append(fused, result)
	}

	sort.Slice(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	return fused
}
