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

package vocab

import (
	"slices"
	"strings"

	"github.com/ianlewis/go-reverselookup/internal/index"
)

// SyllableID is an index into a Syllabary.
type SyllableID int32

// Code is a pronunciation code: a sequence of syllables.
type Code []SyllableID

// syllable is a syllabary entry indexed by name.
type syllable struct {
	name string
	id   SyllableID
}

func (s syllable) String() string {
	return s.name
}

// Syllabary is the ordered list of known syllables. A syllable's SyllableID
// is its position in the list.
type Syllabary struct {
	names []string
	index *index.Index[syllable]
}

// NewSyllabary returns a syllabary of the given syllables in the given order.
// Repeated syllables keep their first position.
func NewSyllabary(syllables ...string) *Syllabary {
	seen := make(map[string]struct{}, len(syllables))
	s := &Syllabary{}
	var entries []syllable
	for _, name := range syllables {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		entries = append(entries, syllable{
			name: name,
			//nolint:gosec // syllabaries are far smaller than MaxInt32.
			id: SyllableID(len(s.names)),
		})
		s.names = append(s.names, name)
	}
	s.index = index.NewIndex(entries, strings.Compare)
	return s
}

// ID returns the id of the given syllable.
func (s *Syllabary) ID(name string) (SyllableID, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.index.Find(name)
	if !ok {
		return 0, false
	}
	return s.index.At(i).id, true
}

// Syllable returns the syllable with the given id.
func (s *Syllabary) Syllable(id SyllableID) (string, bool) {
	if s == nil || id < 0 || int(id) >= len(s.names) {
		return "", false
	}
	return s.names[id], true
}

// Len returns the number of syllables.
func (s *Syllabary) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Syllables returns all syllables ordered by id.
func (s *Syllabary) Syllables() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.names)
}

// Entry is a dictionary entry.
type Entry struct {
	Text   string
	Code   Code
	Weight float64
}

// Vocabulary is one level of the vocabulary trie keyed by the syllable at that
// level's position in an entry's code.
type Vocabulary map[SyllableID]*Page

// Page holds the entries whose code ends at this level and, optionally, the
// deeper level holding longer codes sharing this prefix.
type Page struct {
	Entries   []*Entry
	NextLevel Vocabulary
}

// Add places e on the page at depth len(e.Code), creating intermediate pages
// as needed. Entries without a code are ignored.
func (v Vocabulary) Add(e *Entry) {
	if len(e.Code) == 0 {
		return
	}
	level := v
	for i, id := range e.Code {
		page, ok := level[id]
		if !ok {
			page = &Page{}
			level[id] = page
		}
		if i == len(e.Code)-1 {
			page.Entries = append(page.Entries, e)
			return
		}
		if page.NextLevel == nil {
			page.NextLevel = Vocabulary{}
		}
		level = page.NextLevel
	}
}

// Len returns the number of entries in the vocabulary including all deeper
// levels.
func (v Vocabulary) Len() int {
	n := 0
	queue := []Vocabulary{v}
	for len(queue) > 0 {
		level := queue[0]
		queue = queue[1:]
		for _, page := range level {
			n += len(page.Entries)
			if page.NextLevel != nil {
				queue = append(queue, page.NextLevel)
			}
		}
	}
	return n
}

// StemTable maps texts to their stems.
type StemTable map[string][]string

// Add records stem for text. Repeated stems are kept once.
func (t StemTable) Add(text, stem string) {
	if slices.Contains(t[text], stem) {
		return
	}
	t[text] = append(t[text], stem)
}
