package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored vector entries.
// It is generated using content-based hashing so identical input
// always maps to the same entry.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EntryIDFor generates the entry ID for a chunk of a document.
// The ID covers the document ID, the chunk position and the chunk text,
// so re-indexing an unchanged document yields the same entry IDs.
func EntryIDFor(documentID string, chunkIndex int, text string) ID {
	return IDFromContent(documentID + "\x00" + strconv.Itoa(chunkIndex) + "\x00" + text)
}

// ContentType classifies document content for chunking policy selection.
type ContentType int

const (
	// ContentTypeText represents plain prose text.
	ContentTypeText ContentType = iota + 1
	// ContentTypeCode represents source code.
	ContentTypeCode
	// ContentTypeMarkdown represents markdown documents.
	ContentTypeMarkdown
	// ContentTypeDocumentation represents reference documentation.
	ContentTypeDocumentation
	// ContentTypeConfig represents configuration files.
	ContentTypeConfig
)

var contentTypeNames = map[ContentType]string{
	ContentTypeText:          "text",
	ContentTypeCode:          "code",
	ContentTypeMarkdown:      "markdown",
	ContentTypeDocumentation: "documentation",
	ContentTypeConfig:        "config",
}

// String returns the lowercase name of the content type.
func (ct ContentType) String() string {
	if name, ok := contentTypeNames[ct]; ok {
		return name
	}
	return "unknown"
}

// ParseContentType parses a content type name as produced by String.
// Returns ErrInvalidContentType for unrecognized names.
func ParseContentType(name string) (ContentType, error) {
	for ct, n := range contentTypeNames {
		if n == name {
			return ct, nil
		}
	}
	return 0, ErrInvalidContentType
}

// Metadata describes the origin of a document or chunk.
type Metadata struct {
	Source      string      // Source path or URL
	ContentType ContentType // Content classification driving chunk policy
	Language    string      // Optional language tag (e.g. "go", "python")
	Title       string      // Optional human-readable title
	ChunkIndex  int         // Position of the chunk within its document (0 for documents)
}

// Document is a caller-supplied unit of content.
// It is immutable once handed to the engine.
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
}

// Chunk is a bounded retrievable sub-span of a document produced by the chunker.
// Its metadata is a copy of the parent document's metadata plus the chunk index.
type Chunk struct {
	Text     string
	Metadata Metadata
}

// VectorEntry is the unit held by a vector store: one embedded chunk.
// All entries in a single store share the same embedding dimensionality.
type VectorEntry struct {
	EntryID    ID
	DocumentID string // Parent document reference, used for grouping and removal
	Text       string
	Vector     []float32
	Metadata   Metadata
}

// RetrievalResult is a ranked match produced per query. It is ephemeral
// and never persisted. Score is a similarity or fused rank score and is
// not bounded to [0,1] after fusion.
type RetrievalResult struct {
	ID       ID
	Content  string
	Metadata Metadata
	Score    float64
}

// ManifestEntry records one indexed document in the engine's index manifest.
type ManifestEntry struct {
	DocumentID string
	ChunkCount int
	IndexedAt  time.Time
}
