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
	"regexp"
	"strings"

	"github.com/poiesic/recall/core"
)

// declPattern anchors the start of a structural declaration: optional
// modifier words followed by a declaration keyword and an opening brace
// on the same line. It is deliberately language-agnostic; the balanced
// brace scan determines the span end.
var declPattern = regexp.MustCompile(
	`(?m)^[ \t]*(?:[A-Za-z_][\w]*[ \t]+)*(?:func|function|fn|class|struct|enum|interface|trait|protocol|extension|impl|type)\b[^{;\n]*\{`)

// chunkCode splits source code into one chunk per structural declaration
// (function, type, class and similar). Spans are located with a balanced
// brace scan from the declaration's opening brace and never overlap:
// nested declarations inside an already-consumed span are skipped.
// Returns nil when the text contains no structural matches.
func (c *Chunker) chunkCode(text string, metadata core.Metadata) []core.Chunk {
	matches := declPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var chunks []core.Chunk
	consumed := 0 // end offset of the last emitted span

	for _, m := range matches {
		start, braceAt := m[0], m[1]-1
		if start < consumed {
			continue // nested inside the previous declaration
		}

		end := matchBrace(text, braceAt)
		if end < 0 {
			continue // unbalanced, skip this declaration
		}

		span := strings.TrimSpace(text[start : end+1])
		if span == "" {
			continue
		}

		metadata.ChunkIndex = len(chunks)
		chunks = append(chunks, core.Chunk{Text: span, Metadata: metadata})
		consumed = end + 1
	}

	return chunks
}

// matchBrace returns the offset of the brace closing the one at open,
// or -1 when the braces are unbalanced. The scan is purely structural
// and does not interpret string literals or comments.
func matchBrace(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
