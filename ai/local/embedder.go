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


// Package local provides a deterministic, offline embedding provider.
//
// The embedder average-pools per-word vectors from a fixed vocabulary:
// every vocabulary word owns a stable unit vector derived from a hash of
// the word, unknown words contribute zero, and empty or fully unknown
// input yields a zero vector rather than an error. The model has no
// semantic knowledge beyond exact word identity; it exists so indexing
// and retrieval work offline and reproducibly.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/poiesic/recall/ai"
)

// Dimension is the fixed dimensionality of vectors produced by this provider.
const Dimension = 64

// Embedder implements ai.Embedder with an offline word-vector model.
// It is stateless after construction and safe for concurrent use.
type Embedder struct {
	vectors map[string][]float32
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder builds the vocabulary model.
func NewEmbedder() *Embedder {
	vectors := make(map[string][]float32, len(vocabulary))
	for _, word := range vocabulary {
		vectors[word] = wordVector(word)
	}
	return &Embedder{vectors: vectors}
}

// EmbedText embeds a single text. It never fails: out-of-vocabulary
// input produces a zero vector of the provider's fixed dimension.
func (e *Embedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

// EmbedTexts embeds a batch in input order.
func (e *Embedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

// embed average-pools the word vectors of all tokens. Unknown words
// contribute a zero vector but still count toward the divisor.
func (e *Embedder) embed(text string) []float32 {
	pooled := make([]float32, Dimension)

	words := tokenize(text)
	if len(words) == 0 {
		return pooled
	}

	for _, word := range words {
		if v, ok := e.vectors[word]; ok {
			for i := range pooled {
				pooled[i] += v[i]
			}
		}
	}

	n := float32(len(words))
	for i := range pooled {
		pooled[i] /= n
	}
	return pooled
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// wordVector derives a stable unit vector for a vocabulary word.
// An FNV hash seeds a small LCG that fills the components.
func wordVector(word string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(word))
	seed := h.Sum32()

	v := make([]float32, Dimension)
	var sumSquares float64
	for i := range v {
		seed = seed*1664525 + 1013904223 // LCG constants
		v[i] = float32(seed%2001)/1000.0 - 1.0
		sumSquares += float64(v[i]) * float64(v[i])
	}

	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(sumSquares))
		for i := range v {
			v[i] *= norm
		}
	}
	return v
}
