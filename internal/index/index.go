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

package index

import (
	"fmt"
	"slices"
	"sort"
)

// Index is a generic sorted array index without duplicates. The position of a
// value in the index is its rank, which callers may use as a dense id.
type Index[V fmt.Stringer] struct {
	// values sorted by cmp and compacted.
	values []V

	cmp func(string, string) int
}

// NewIndex creates an index from the given slice and comparison function.
// Values comparing equal are collapsed to the first one in sorted order.
// cmp(a, b) should return a negative number when a < b, a positive number when
// a > b and zero when a == b.
func NewIndex[V fmt.Stringer](values []V, cmp func(string, string) int) *Index[V] {
	sorted := make([]V, len(values))
	copy(sorted, values)
	slices.SortStableFunc(sorted, func(a, b V) int {
		return cmp(a.String(), b.String())
	})
	sorted = slices.CompactFunc(sorted, func(a, b V) bool {
		return cmp(a.String(), b.String()) == 0
	})

	return &Index[V]{
		values: sorted,
		cmp:    cmp,
	}
}

// Find performs a binary search over the index and returns the rank of the
// matching value.
func (idx *Index[V]) Find(query string) (int, bool) {
	return sort.Find(len(idx.values), func(i int) int {
		return idx.cmp(query, idx.values[i].String())
	})
}

// At returns the value with the given rank.
func (idx *Index[V]) At(i int) V {
	return idx.values[i]
}

// Len returns the number of distinct values.
func (idx *Index[V]) Len() int {
	return len(idx.values)
}

// Values returns the sorted values. The returned slice must not be modified.
func (idx *Index[V]) Values() []V {
	return idx.values
}
