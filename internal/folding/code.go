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

// Package folding provides text transformers used to normalize the code
// column of dictionary sources before it is split into syllables.
package folding

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Code returns a transformer that normalizes a code column: control
// characters other than whitespace are dropped and whitespace is folded so
// that syllables are separated by exactly one ASCII space.
func Code() transform.Transformer {
	return transform.Chain(
		runes.Remove(runes.Predicate(func(r rune) bool {
			return unicode.IsControl(r) && !unicode.IsSpace(r)
		})),
		&SpaceFolder{},
	)
}

// SpaceFolder removes spaces from the beginning and end of the input and
// replaces all internal whitespace spans with a single ASCII space rune.
type SpaceFolder struct {
	// started is true after the first non-space rune was emitted.
	started bool

	// pending is true while inside an internal whitespace span.
	pending bool
}

// Transform implements [transform.Transformer.Transform].
func (f *SpaceFolder) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	var nDst, nSrc int
	for nSrc < len(src) {
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size <= 1 && !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}

		if unicode.IsSpace(r) {
			nSrc += size
			f.pending = f.started
			continue
		}

		if f.pending {
			if nDst+1 > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = ' '
			nDst++
			f.pending = false
		}

		// Copy the source bytes as is so invalid sequences pass through
		// unchanged.
		if nDst+size > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], src[nSrc:nSrc+size])
		nSrc += size
		f.started = true
	}

	return nDst, nSrc, nil
}

// Reset implements [transform.Transformer.Reset].
func (f *SpaceFolder) Reset() {
	*f = SpaceFolder{}
}
