package storage

import "math"

// CosineSimilarity computes the cosine of the angle between two vectors.
//
// Degenerate inputs are defined, not errors: a zero vector against
// anything is 0, and mismatched dimensions score 0 rather than panic,
// so a query embedded under a different model simply matches nothing.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
