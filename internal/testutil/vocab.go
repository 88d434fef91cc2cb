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

package testutil

import (
	"strings"
	"testing"

	"github.com/ianlewis/go-reverselookup/vocab"
)

// Entry is a fixture entry given as a text and a space separated code.
type Entry struct {
	Text string
	Code string
}

// MakeVocabulary builds a syllabary and vocabulary from entries. The syllabary
// lists syllables in the given order followed by any other syllables used by
// entries in order of first use.
func MakeVocabulary(t *testing.T, syllables []string, entries []Entry) (*vocab.Syllabary, vocab.Vocabulary) {
	t.Helper()

	all := append([]string{}, syllables...)
	for _, e := range entries {
		all = append(all, strings.Fields(e.Code)...)
	}
	syllabary := vocab.NewSyllabary(all...)

	v := vocab.Vocabulary{}
	for _, e := range entries {
		var code vocab.Code
		for _, s := range strings.Fields(e.Code) {
			id, ok := syllabary.ID(s)
			if !ok {
				t.Fatalf("syllable %q missing from syllabary", s)
			}
			code = append(code, id)
		}
		v.Add(&vocab.Entry{Text: e.Text, Code: code})
	}
	return syllabary, v
}
