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


package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbeddingFailed indicates the backing computation could not
	// produce an embedding (network failure, non-success status, or a
	// malformed provider response).
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrEmbedderRequired is returned when an inner embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)

// errMismatch reports a provider returning the wrong number of vectors
// for a batch. Treated as an embedding failure.
func errMismatch(want, got int) error {
	return fmt.Errorf("%w: expected %d vectors, received %d", ErrEmbeddingFailed, want, got)
}
