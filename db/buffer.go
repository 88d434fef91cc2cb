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
	"fmt"
	"math"
)

// alignment of every allocation in the build buffer.
const alignment = 4

// buffer is a fixed capacity bump allocator holding a store image while it is
// built. Allocations never move.
type buffer struct {
	data []byte
	used int
}

func newBuffer(capacity int) (*buffer, error) {
	if capacity < metadataSize || capacity > math.MaxUint32 {
		return nil, fmt.Errorf("%w: invalid capacity %d", ErrAllocation, capacity)
	}
	return &buffer{
		data: make([]byte, capacity),
	}, nil
}

// allocate reserves n zeroed bytes and returns their span.
func (b *buffer) allocate(n int) (span, []byte, error) {
	offset := (b.used + alignment - 1) &^ (alignment - 1)
	if n < 0 || offset > len(b.data) || n > len(b.data)-offset {
		return span{}, nil, fmt.Errorf("%w: %d bytes at offset %d exceeds capacity %d", ErrAllocation, n, offset, len(b.data))
	}
	b.used = offset + n
	//nolint:gosec // capacity is at most MaxUint32.
	return span{offset: uint32(offset), size: uint32(n)}, b.data[offset : offset+n], nil
}

// bytes returns the used part of the buffer.
func (b *buffer) bytes() []byte {
	return b.data[:b.used]
}
