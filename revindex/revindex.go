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

// Package revindex builds the reverse (text to pronunciation) index of a
// dictionary vocabulary.
//
// The index is a set of (key, value) pairs interned into two string tables.
// Keys are entry texts, values are the distinct pronunciations of each text
// joined with " | ". Stems share the same tables: a stem key is the text
// followed by StemKeySuffix.
package revindex

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ianlewis/go-reverselookup/strtable"
	"github.com/ianlewis/go-reverselookup/vocab"
)

const (
	// StemKeySuffix is appended to a text to form its stem key. It starts with
	// the ASCII unit separator, which is not allowed in entry texts.
	StemKeySuffix = "\x1fstem"

	reservedSeparator = '\x1f'

	syllableSeparator      = " "
	pronunciationSeparator = " | "
	stemSeparator          = " "
)

var (
	// ErrReservedText indicates a text containing the reserved stem key
	// separator.
	ErrReservedText = errors.New("text contains reserved separator")

	// ErrKeyCollision indicates that two entries interned to the same key.
	ErrKeyCollision = errors.New("key collision")
)

// Table maps texts to their distinct pronunciations.
type Table map[string]map[string]struct{}

// Pronunciations returns the distinct pronunciations of text in sorted order.
func (t Table) Pronunciations(text string) []string {
	return slices.Sorted(maps.Keys(t[text]))
}

func (t Table) insert(text, pronunciation string) {
	set, ok := t[text]
	if !ok {
		set = map[string]struct{}{}
		t[text] = set
	}
	set[pronunciation] = struct{}{}
}

// Aggregate traverses the vocabulary breadth first and collects the
// pronunciation of every entry under its text. Syllable ids outside the
// syllabary are skipped. Entries with an empty text are ignored.
func Aggregate(syllabary *vocab.Syllabary, vocabulary vocab.Vocabulary) Table {
	names := syllabary.Syllables()

	table := Table{}
	queue := []vocab.Vocabulary{vocabulary}
	for len(queue) > 0 {
		level := queue[0]
		queue = queue[1:]

		for _, page := range level {
			for _, e := range page.Entries {
				if e.Text == "" {
					continue
				}
				syllables := make([]string, 0, len(e.Code))
				for _, id := range e.Code {
					if id >= 0 && int(id) < len(names) {
						syllables = append(syllables, names[id])
					}
				}
				table.insert(e.Text, strings.Join(syllables, syllableSeparator))
			}
			if page.NextLevel != nil {
				queue = append(queue, page.NextLevel)
			}
		}
	}
	return table
}

// Index is a built reverse index.
type Index struct {
	// EntryCount is the number of (key, value) pairs.
	EntryCount int

	// KeyIDs and ValueIDs hold the ids of each pair. Empty values have the id
	// strtable.InvalidID.
	KeyIDs   []strtable.ID
	ValueIDs []strtable.ID

	// Keys and Values are the built string tables.
	Keys   *strtable.Builder
	Values *strtable.Builder
}

type pair struct {
	key, value string
}

// Build aggregates the vocabulary and stems into a reverse index.
func Build(syllabary *vocab.Syllabary, vocabulary vocab.Vocabulary, stems vocab.StemTable) (*Index, error) {
	table := Aggregate(syllabary, vocabulary)

	pairs := make([]pair, 0, len(table)+len(stems))
	for _, text := range slices.Sorted(maps.Keys(table)) {
		if strings.ContainsRune(text, reservedSeparator) {
			return nil, fmt.Errorf("%w: %q", ErrReservedText, text)
		}
		pairs = append(pairs, pair{
			key:   text,
			value: strings.Join(table.Pronunciations(text), pronunciationSeparator),
		})
	}
	for _, text := range slices.Sorted(maps.Keys(stems)) {
		if strings.ContainsRune(text, reservedSeparator) {
			return nil, fmt.Errorf("%w: %q", ErrReservedText, text)
		}
		values := slices.Clone(stems[text])
		slices.Sort(values)
		pairs = append(pairs, pair{
			key:   text + StemKeySuffix,
			value: strings.Join(slices.Compact(values), stemSeparator),
		})
	}

	idx := &Index{
		EntryCount: len(pairs),
		KeyIDs:     make([]strtable.ID, len(pairs)),
		ValueIDs:   make([]strtable.ID, len(pairs)),
		Keys:       strtable.NewBuilder(),
		Values:     strtable.NewBuilder(),
	}
	for _, p := range pairs {
		if err := idx.Keys.Add(p.key); err != nil {
			return nil, fmt.Errorf("adding key %q: %w", p.key, err)
		}
		if p.value == "" {
			continue
		}
		if err := idx.Values.Add(p.value); err != nil {
			return nil, fmt.Errorf("adding value %q: %w", p.value, err)
		}
	}
	if err := idx.Keys.Build(); err != nil {
		return nil, fmt.Errorf("building key table: %w", err)
	}
	if err := idx.Values.Build(); err != nil {
		return nil, fmt.Errorf("building value table: %w", err)
	}

	// Key ids address the index array directly so they must be dense.
	if idx.Keys.Len() != idx.EntryCount {
		return nil, fmt.Errorf("%w: %d keys for %d entries", ErrKeyCollision, idx.Keys.Len(), idx.EntryCount)
	}

	for i, p := range pairs {
		idx.KeyIDs[i], _ = idx.Keys.ID(p.key)
		idx.ValueIDs[i] = strtable.InvalidID
		if id, ok := idx.Values.ID(p.value); ok {
			idx.ValueIDs[i] = id
		}
	}
	return idx, nil
}
