package badger

import (
	"encoding/binary"

	"github.com/mus-format/mus-go/ord"
	"github.com/poiesic/recall/core"
)

// Key prefixes for different data types
const (
	entryPrefix    = "vecent"
	tokenPrefix    = "vectok"
	documentPrefix = "vecdoc"
	manifestPrefix = "manrec"
)

// makeEntryKey generates a key for a vector entry by ID.
func makeEntryKey(id core.ID) []byte {
	prefix := entryPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeTokenKey generates a composite key for the inverted index.
// Format: prefix:token:entryID
func makeTokenKey(token string, id core.ID) []byte {
	prefix := tokenPrefix + ":" + token + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialTokenKey generates the iteration prefix for one token's postings.
func makePartialTokenKey(token string) []byte {
	return []byte(tokenPrefix + ":" + token + ":")
}

// makeDocumentKey generates a composite key for the document index.
// Format: prefix, marshalled document ID, entry ID. Document IDs are
// caller strings that may themselves contain the separator, so they
// are length-prefixed with the store's string serializer; a plain
// splice would let "a" prefix-match the keys of "a:b".
func makeDocumentKey(documentID string, id core.ID) []byte {
	partial := makePartialDocumentKey(documentID)
	buf := make([]byte, len(partial)+8)
	offset := copy(buf, partial)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDocumentKey generates the iteration prefix for one document's entries.
func makePartialDocumentKey(documentID string) []byte {
	prefix := documentPrefix + ":"
	buf := make([]byte, len(prefix)+ord.String.Size(documentID))
	offset := copy(buf, prefix)
	ord.String.Marshal(documentID, buf[offset:])
	return buf
}

// makeManifestKey generates a key for a document's manifest entry,
// length-prefixing the document ID the same way makeDocumentKey does.
func makeManifestKey(documentID string) []byte {
	prefix := manifestPrefix + ":"
	buf := make([]byte, len(prefix)+ord.String.Size(documentID))
	offset := copy(buf, prefix)
	ord.String.Marshal(documentID, buf[offset:])
	return buf
}

// entryIDFromKey extracts the trailing BigEndian entry ID from a composite key.
func entryIDFromKey(key []byte) (core.ID, bool) {
	if len(key) < 8 {
		return 0, false
	}
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:])), true
}
