// Package storage defines the vector store capability used by the
// retrieval engine, plus the tokenization and similarity primitives
// shared by its implementations.
//
// Two variants implement VectorStore:
//   - storage/memory: mutex-guarded maps, the reference implementation
//   - storage/badger: a BadgerDB-backed variant with the same contract,
//     durable on disk or fully in-memory for tests
//
// Both maintain an inverted lexical index next to the vectors so keyword
// search and hybrid retrieval work without a separate text index.
package storage
