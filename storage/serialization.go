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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/recall/core"
)

// MUS serializers for the records persisted by the badger store variant.
// The types are flat, so the serializers are written by hand rather than
// generated.

// VectorEntryMUS serializes core.VectorEntry.
var VectorEntryMUS = vectorEntryMUS{}

// ManifestEntryMUS serializes core.ManifestEntry.
var ManifestEntryMUS = manifestEntryMUS{}

// MarshalEntry serializes a VectorEntry to bytes.
func MarshalEntry(entry *core.VectorEntry) []byte {
	buf := make([]byte, VectorEntryMUS.Size(*entry))
	VectorEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalEntry deserializes a VectorEntry from bytes.
func UnmarshalEntry(data []byte) (*core.VectorEntry, error) {
	entry, _, err := VectorEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}

// MarshalManifestEntry serializes a ManifestEntry to bytes.
func MarshalManifestEntry(entry *core.ManifestEntry) []byte {
	buf := make([]byte, ManifestEntryMUS.Size(*entry))
	ManifestEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalManifestEntry deserializes a ManifestEntry from bytes.
func UnmarshalManifestEntry(data []byte) (*core.ManifestEntry, error) {
	entry, _, err := ManifestEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}

type vectorEntryMUS struct{}

func (vectorEntryMUS) Marshal(v core.VectorEntry, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.EntryID), bs)
	n += ord.String.Marshal(v.DocumentID, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += varint.Int.Marshal(len(v.Vector), bs[n:])
	for _, f := range v.Vector {
		n += varint.Float32.Marshal(f, bs[n:])
	}
	n += marshalMetadata(v.Metadata, bs[n:])
	return n
}

func (vectorEntryMUS) Unmarshal(bs []byte) (v core.VectorEntry, n int, err error) {
	var (
		id     uint64
		length int
		c      int
	)

	if id, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	v.EntryID = core.ID(id)

	if v.DocumentID, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += c

	if v.Text, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += c

	if length, c, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += c
	if length < 0 {
		err = ErrSerializationFailed
		return
	}

	v.Vector = make([]float32, length)
	for i := 0; i < length; i++ {
		if v.Vector[i], c, err = varint.Float32.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += c
	}

	if v.Metadata, c, err = unmarshalMetadata(bs[n:]); err != nil {
		return
	}
	n += c

	return
}

func (vectorEntryMUS) Size(v core.VectorEntry) (size int) {
	size = varint.Uint64.Size(uint64(v.EntryID))
	size += ord.String.Size(v.DocumentID)
	size += ord.String.Size(v.Text)
	size += varint.Int.Size(len(v.Vector))
	for _, f := range v.Vector {
		size += varint.Float32.Size(f)
	}
	size += sizeMetadata(v.Metadata)
	return size
}

type manifestEntryMUS struct{}

func (manifestEntryMUS) Marshal(v core.ManifestEntry, bs []byte) (n int) {
	n = ord.String.Marshal(v.DocumentID, bs)
	n += varint.Int.Marshal(v.ChunkCount, bs[n:])
	n += varint.Int64.Marshal(v.IndexedAt.UnixMicro(), bs[n:])
	return n
}

func (manifestEntryMUS) Unmarshal(bs []byte) (v core.ManifestEntry, n int, err error) {
	var (
		micros int64
		c      int
	)

	if v.DocumentID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}

	if v.ChunkCount, c, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += c

	if micros, c, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += c
	v.IndexedAt = time.UnixMicro(micros).UTC()

	return
}

func (manifestEntryMUS) Size(v core.ManifestEntry) (size int) {
	size = ord.String.Size(v.DocumentID)
	size += varint.Int.Size(v.ChunkCount)
	size += varint.Int64.Size(v.IndexedAt.UnixMicro())
	return size
}

func marshalMetadata(md core.Metadata, bs []byte) (n int) {
	n = ord.String.Marshal(md.Source, bs)
	n += varint.Int.Marshal(int(md.ContentType), bs[n:])
	n += ord.String.Marshal(md.Language, bs[n:])
	n += ord.String.Marshal(md.Title, bs[n:])
	n += varint.Int.Marshal(md.ChunkIndex, bs[n:])
	return n
}

func unmarshalMetadata(bs []byte) (md core.Metadata, n int, err error) {
	var (
		ct int
		c  int
	)

	if md.Source, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}

	if ct, c, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += c
	md.ContentType = core.ContentType(ct)

	if md.Language, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += c

	if md.Title, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += c

	if md.ChunkIndex, c, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += c

	return
}

func sizeMetadata(md core.Metadata) (size int) {
	size = ord.String.Size(md.Source)
	size += varint.Int.Size(int(md.ContentType))
	size += ord.String.Size(md.Language)
	size += ord.String.Size(md.Title)
	size += varint.Int.Size(md.ChunkIndex)
	return size
}
