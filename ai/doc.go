// Package ai defines the embedding capability used by the retrieval engine
// and a caching decorator around it.
//
// Two provider variants implement the Embedder interface:
//   - ai/local: a deterministic, offline word-vector model
//   - ai/openai: a remote OpenAI-compatible embeddings API client
//
// CachedEmbedder wraps any provider with a bounded exact-text memo table
// and batch de-duplication. Callers depend on the Embedder interface and
// choose the concrete variant at construction time.
package ai
