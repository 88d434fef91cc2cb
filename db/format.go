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

package db

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// FormatPrefix starts the format tag of every reverse lookup store.
	FormatPrefix = "Reverse/"

	// FormatVersion is the version written by Build.
	FormatVersion = "3.1"

	// Format is the format tag written by Build.
	Format = FormatPrefix + FormatVersion

	// Stores with major version compatibleMajor and a minor version within
	// [compatibleMinor, compatibleMinor+1] can be loaded.
	compatibleMajor = 3
	compatibleMinor = 0

	formatMaxLength = 32

	// metadataSize is the size of the fixed header at offset 0.
	metadataSize = 72

	// idSize is the size of a string id in the index array.
	idSize = 4
)

// Header field offsets.
const (
	offFormat      = 0
	offChecksum    = 32
	offSettings    = 36
	offKeyTrie     = 44
	offValueTrie   = 52
	offIndexSize   = 60
	offIndexOffset = 64
)

var byteOrder = binary.LittleEndian

// span is a byte range inside the store.
type span struct {
	offset uint32
	size   uint32
}

func (s span) bytes(data []byte) ([]byte, error) {
	end := uint64(s.offset) + uint64(s.size)
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: range [%d, %d) outside %d byte file", ErrFormat, s.offset, end, len(data))
	}
	return data[s.offset:end], nil
}

func readSpan(b []byte) span {
	return span{
		offset: byteOrder.Uint32(b),
		size:   byteOrder.Uint32(b[4:]),
	}
}

func (s span) put(b []byte) {
	byteOrder.PutUint32(b, s.offset)
	byteOrder.PutUint32(b[4:], s.size)
}

// metadata is the store header.
type metadata struct {
	format    string
	checksum  uint32
	settings  span
	keyTrie   span
	valueTrie span

	// indexSize is the number of ids in the index array.
	indexSize   uint32
	indexOffset uint32
}

func (m *metadata) index() span {
	return span{offset: m.indexOffset, size: m.indexSize * idSize}
}

// put writes every field except the format tag into b.
func (m *metadata) put(b []byte) {
	byteOrder.PutUint32(b[offChecksum:], m.checksum)
	m.settings.put(b[offSettings:])
	m.keyTrie.put(b[offKeyTrie:])
	m.valueTrie.put(b[offValueTrie:])
	byteOrder.PutUint32(b[offIndexSize:], m.indexSize)
	byteOrder.PutUint32(b[offIndexOffset:], m.indexOffset)
}

// putFormat writes the format tag into b.
func putFormat(b []byte, format string) {
	field := b[offFormat : offFormat+formatMaxLength]
	clear(field)
	copy(field[:formatMaxLength-1], format)
}

// parseMetadata reads and validates the header at the start of data.
func parseMetadata(data []byte) (*metadata, error) {
	if len(data) < metadataSize {
		return nil, fmt.Errorf("%w: metadata not found", ErrFormat)
	}

	format := data[offFormat : offFormat+formatMaxLength]
	if i := bytes.IndexByte(format, 0); i >= 0 {
		format = format[:i]
	}
	m := &metadata{
		format:      string(format),
		checksum:    byteOrder.Uint32(data[offChecksum:]),
		settings:    readSpan(data[offSettings:]),
		keyTrie:     readSpan(data[offKeyTrie:]),
		valueTrie:   readSpan(data[offValueTrie:]),
		indexSize:   byteOrder.Uint32(data[offIndexSize:]),
		indexOffset: byteOrder.Uint32(data[offIndexOffset:]),
	}
	if err := checkFormat(m.format); err != nil {
		return nil, err
	}

	if n := uint64(m.indexSize) * idSize; n > math.MaxUint32 || n > uint64(len(data)) {
		return nil, fmt.Errorf("%w: index of %d entries outside %d byte file", ErrFormat, m.indexSize, len(data))
	}
	for _, s := range []span{m.settings, m.keyTrie, m.valueTrie, m.index()} {
		if _, err := s.bytes(data); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// checkFormat checks that format names a loadable store version.
func checkFormat(format string) error {
	version, ok := strings.CutPrefix(format, FormatPrefix)
	if !ok {
		return fmt.Errorf("%w: invalid format %q", ErrFormat, format)
	}

	majorStr, minorStr, _ := strings.Cut(version, ".")
	major, err := strconv.Atoi(majorStr)
	if err != nil {
		return fmt.Errorf("%w: invalid format version %q", ErrFormat, version)
	}
	minor := 0
	if minorStr != "" {
		minor, err = strconv.Atoi(minorStr)
		if err != nil {
			return fmt.Errorf("%w: invalid format version %q", ErrFormat, version)
		}
	}

	if major != compatibleMajor || minor < compatibleMinor || minor > compatibleMinor+1 {
		return fmt.Errorf("%w: incompatible format version %q", ErrFormat, version)
	}
	return nil
}
