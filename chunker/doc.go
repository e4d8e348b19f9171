// Package chunker splits document content into bounded retrievable chunks.
//
// Chunking policy is selected by content type:
//   - Code content is split along structural declarations (functions, types)
//     using balanced-brace span matching, with a prose fallback when no
//     structure is found.
//   - All other content is split into sentence groups with a word-based
//     trailing overlap carried between adjacent chunks.
//
// A lexical unit smaller than a sentence or declaration is never broken,
// so a single oversized sentence is kept whole rather than split mid-word.
package chunker
