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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Content must not be empty
//   - ContentType must be a known value
//
// NOT validated:
//   - Language and Title (optional)
//   - Source (optional; callers may index synthetic documents)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentID)
	}

	if doc.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}

	if err := ValidateContentType(doc.Metadata.ContentType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateEntry validates a VectorEntry before storage.
//
// Validation rules:
//   - DocumentID must not be empty
//   - Text must not be empty
//
// NOT validated:
//   - Vector (dimension agreement is the store's concern)
//   - EntryID (0 is technically a valid hash value)
func ValidateEntry(entry *VectorEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.DocumentID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyDocumentID)
	}

	if entry.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyContent)
	}

	return nil
}

// ValidateContentType validates that a ContentType has a known value.
func ValidateContentType(ct ContentType) error {
	if _, ok := contentTypeNames[ct]; !ok {
		return fmt.Errorf("%w: value %d", ErrInvalidContentType, ct)
	}
	return nil
}
