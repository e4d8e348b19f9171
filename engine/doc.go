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


// Package engine orchestrates document indexing and retrieval.
//
// The Engine type ties the pieces together:
//   - Indexing: chunk -> embed -> store, one atomic step per document
//   - Semantic retrieval using vector similarity
//   - Lexical retrieval over the store's inverted index
//   - Hybrid retrieval fusing both with Reciprocal Rank Fusion
//   - A cheap lexical-overlap reranker for the semantic path
//
// Retrieval degrades to empty results when the embedder is unavailable;
// the condition is observable through RetrievalMonitor and logs.
package engine
