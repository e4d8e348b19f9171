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


package chunker

import (
	"strings"

	"github.com/poiesic/recall/core"
)

const (
	// DefaultChunkSize is the target chunk size in characters.
	DefaultChunkSize = 512

	// DefaultOverlap is the trailing overlap carried between adjacent
	// prose chunks, in characters. Carry-over is word-based: trailing
	// words are taken until roughly this many characters accumulate.
	DefaultOverlap = 50
)

// Chunker splits document text into retrievable chunks.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in characters.
// Values below 1 are ignored.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap allowance in characters.
// Negative values are ignored.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	// Overlap larger than the chunk itself would stall progress
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}
	return c
}

// Chunk splits text into chunks according to the policy selected by
// metadata.ContentType. Each chunk carries a copy of the metadata with
// its ChunkIndex set. Empty input yields zero chunks.
func (c *Chunker) Chunk(text string, metadata core.Metadata) []core.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if metadata.ContentType == core.ContentTypeCode {
		if chunks := c.chunkCode(text, metadata); len(chunks) > 0 {
			return chunks
		}
		// No structural matches, fall back to prose chunking
	}

	return c.chunkProse(text, metadata)
}

// chunkProse splits text on sentence terminators and greedily packs
// sentences into chunks of at most chunkSize characters. When a chunk
// closes, the trailing words of it (up to the overlap allowance) seed
// the next chunk to preserve context across the boundary.
func (c *Chunker) chunkProse(text string, metadata core.Metadata) []core.Chunk {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []core.Chunk
	var buf strings.Builder

	flush := func() string {
		closed := strings.TrimSpace(buf.String())
		buf.Reset()
		if closed == "" {
			return ""
		}
		metadata.ChunkIndex = len(chunks)
		chunks = append(chunks, core.Chunk{Text: closed, Metadata: metadata})
		return closed
	}

	for _, sentence := range sentences {
		if buf.Len() > 0 && buf.Len()+1+len(sentence) > c.chunkSize {
			closed := flush()
			if carry := trailingWords(closed, c.overlap); carry != "" {
				buf.WriteString(carry)
			}
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(sentence)
	}
	flush()

	return chunks
}

// splitSentences splits text on sentence terminators (., !, ?) and
// newlines, keeping the terminator attached to its sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		current.Reset()
		if s != "" {
			sentences = append(sentences, s)
		}
	}

	for _, r := range text {
		switch r {
		case '.', '!', '?':
			current.WriteRune(r)
			flush()
		case '\n':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return sentences
}

// trailingWords returns the suffix of text made of whole words whose
// total length does not exceed budget characters.
func trailingWords(text string, budget int) string {
	if budget <= 0 || text == "" {
		return ""
	}

	words := strings.Fields(text)
	total := 0
	start := len(words)
	for i := len(words) - 1; i >= 0; i-- {
		next := total + len(words[i])
		if total > 0 {
			next++ // joining space
		}
		if next > budget {
			break
		}
		total = next
		start = i
	}

	if start == len(words) {
		return ""
	}
	return strings.Join(words[start:], " ")
}
