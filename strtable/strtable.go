// Copyright 2026 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package strtable implements an immutable table mapping strings to small
// dense integer ids and back.
//
// A table is produced in two steps. A [Builder] collects strings and, once
// built, assigns each distinct string an id in [0, Len()) and serializes the
// table into a flat byte image. [Open] then gives a read-only [Table] view that
// reads that image in place, so the image can live inside a larger
// memory-mapped file.
//
// The image is laid out as follows, all integers little-endian uint32:
//
//	count | fst size | count+1 string offsets | fst | string data
//
// The fst maps each string to its id. The offsets index the string data by
// id.
package strtable

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
	"unicode/utf8"

	"github.com/blevesearch/vellum"
)

// ID is a string id. Ids are only meaningful relative to the table that
// assigned them.
type ID uint32

// InvalidID is never assigned to a string.
const InvalidID = ID(math.MaxUint32)

const (
	wordSize   = 4
	headerSize = 2 * wordSize
)

var byteOrder = binary.LittleEndian

var (
	// ErrEmptyString indicates an attempt to add the empty string.
	ErrEmptyString = errors.New("empty string")

	// ErrInvalidUTF8 indicates an attempt to add a string that is not valid
	// utf-8.
	ErrInvalidUTF8 = errors.New("invalid utf-8")

	// ErrBuilt indicates the builder was modified or built after Build.
	ErrBuilt = errors.New("string table already built")

	// ErrNotBuilt indicates the builder was queried before Build.
	ErrNotBuilt = errors.New("string table not built")

	// ErrShortBuffer indicates a Dump buffer smaller than BinarySize.
	ErrShortBuffer = errors.New("short buffer")

	// ErrTooLarge indicates the table has more strings or bytes than ids and
	// offsets can address.
	ErrTooLarge = errors.New("string table too large")

	// ErrInvalidImage indicates a malformed table image.
	ErrInvalidImage = errors.New("invalid string table image")
)

// Builder accumulates strings for a new table.
type Builder struct {
	pending map[string]struct{}

	// ids is populated by Build.
	ids   map[string]ID
	image []byte
	built bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		pending: map[string]struct{}{},
	}
}

// Add adds s to the table. Adding the same string more than once is allowed;
// all additions resolve to the same id.
func (b *Builder) Add(s string) error {
	if b.built {
		return ErrBuilt
	}
	if s == "" {
		return ErrEmptyString
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidUTF8, s)
	}
	b.pending[s] = struct{}{}
	return nil
}

// Build assigns the final ids and serializes the table image. Ids are dense
// over [0, Len()) and follow the byte order of the strings.
func (b *Builder) Build() error {
	if b.built {
		return ErrBuilt
	}
	if uint64(len(b.pending)) >= uint64(InvalidID) {
		return fmt.Errorf("%w: %d strings", ErrTooLarge, len(b.pending))
	}

	words := make([]string, 0, len(b.pending))
	for s := range b.pending {
		words = append(words, s)
	}
	slices.Sort(words)

	b.ids = make(map[string]ID, len(words))
	if len(words) > 0 {
		image, err := encode(words)
		if err != nil {
			return err
		}
		b.image = image
		for i, w := range words {
			//nolint:gosec // i < len(words) < InvalidID.
			b.ids[w] = ID(i)
		}
	}

	b.pending = nil
	b.built = true
	return nil
}

// encode serializes the sorted, unique words.
func encode(words []string) ([]byte, error) {
	var fst bytes.Buffer
	builder, err := vellum.New(&fst, nil)
	if err != nil {
		return nil, fmt.Errorf("creating string table: %w", err)
	}
	dataSize := 0
	for i, w := range words {
		if err := builder.Insert([]byte(w), uint64(i)); err != nil {
			return nil, fmt.Errorf("adding %q to string table: %w", w, err)
		}
		dataSize += len(w)
	}
	if err := builder.Close(); err != nil {
		return nil, fmt.Errorf("serializing string table: %w", err)
	}

	size := headerSize + wordSize*(len(words)+1) + fst.Len() + dataSize
	if uint64(size) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}

	image := make([]byte, size)
	//nolint:gosec // len(words) < InvalidID.
	byteOrder.PutUint32(image, uint32(len(words)))
	//nolint:gosec // size fits in a uint32.
	byteOrder.PutUint32(image[wordSize:], uint32(fst.Len()))

	offsets := image[headerSize:]
	data := image[headerSize+wordSize*(len(words)+1):]
	copy(data, fst.Bytes())
	data = data[fst.Len():]

	off := 0
	for i, w := range words {
		//nolint:gosec // off <= dataSize which fits in a uint32.
		byteOrder.PutUint32(offsets[i*wordSize:], uint32(off))
		off += copy(data[off:], w)
	}
	//nolint:gosec // off == dataSize which fits in a uint32.
	byteOrder.PutUint32(offsets[len(words)*wordSize:], uint32(off))
	return image, nil
}

// ID returns the id assigned to s by Build.
func (b *Builder) ID(s string) (ID, bool) {
	id, ok := b.ids[s]
	return id, ok
}

// Len returns the number of distinct strings in the table.
func (b *Builder) Len() int {
	if b.built {
		return len(b.ids)
	}
	return len(b.pending)
}

// BinarySize returns the size of the serialized image in bytes.
func (b *Builder) BinarySize() int {
	return len(b.image)
}

// Dump copies the serialized image into buf and returns the number of bytes
// written.
func (b *Builder) Dump(buf []byte) (int, error) {
	if !b.built {
		return 0, ErrNotBuilt
	}
	if len(buf) < len(b.image) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, len(b.image), len(buf))
	}
	return copy(buf, b.image), nil
}

// Table is a read-only string table view over a serialized image.
type Table struct {
	fst     *vellum.FST
	offsets []byte
	data    []byte
	size    int
}

// Open returns a Table reading the given image in place. The image must not
// be modified or unmapped while the Table is in use. An empty image yields an
// empty table.
func Open(image []byte) (*Table, error) {
	if len(image) == 0 {
		return &Table{}, nil
	}
	if len(image) < headerSize {
		return nil, fmt.Errorf("%w: %d byte image", ErrInvalidImage, len(image))
	}

	count := uint64(byteOrder.Uint32(image))
	fstSize := uint64(byteOrder.Uint32(image[wordSize:]))
	offsetsEnd := headerSize + wordSize*(count+1)
	fstEnd := offsetsEnd + fstSize
	if count >= uint64(InvalidID) || fstEnd > uint64(len(image)) {
		return nil, fmt.Errorf("%w: %d strings in %d bytes", ErrInvalidImage, count, len(image))
	}

	t := &Table{
		offsets: image[headerSize:offsetsEnd],
		data:    image[fstEnd:],
		size:    int(count),
	}
	last := byteOrder.Uint32(t.offsets[count*wordSize:])
	if uint64(last) > uint64(len(t.data)) {
		return nil, fmt.Errorf("%w: string data out of range", ErrInvalidImage)
	}

	fst, err := vellum.Load(image[offsetsEnd:fstEnd])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	if fst.Len() != t.size {
		return nil, fmt.Errorf("%w: %d strings indexed, %d stored", ErrInvalidImage, fst.Len(), t.size)
	}
	t.fst = fst
	return t, nil
}

// Lookup returns the id of s.
func (t *Table) Lookup(s string) (ID, bool) {
	if t.fst == nil || s == "" {
		return InvalidID, false
	}
	v, ok, err := t.fst.Get([]byte(s))
	if err != nil || !ok || v >= uint64(t.size) {
		return InvalidID, false
	}
	return ID(v), true
}

// GetString returns the string with the given id, or the empty string if the
// id is unknown.
func (t *Table) GetString(id ID) string {
	if id == InvalidID || int64(id) >= int64(t.size) {
		return ""
	}
	start := byteOrder.Uint32(t.offsets[int(id)*wordSize:])
	end := byteOrder.Uint32(t.offsets[(int(id)+1)*wordSize:])
	if start > end || uint64(end) > uint64(len(t.data)) {
		return ""
	}
	return string(t.data[start:end])
}

// Len returns the number of strings in the table.
func (t *Table) Len() int {
	return t.size
}
