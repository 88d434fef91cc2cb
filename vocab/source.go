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
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/klauspost/crc32"
	"golang.org/x/text/transform"

	"github.com/ianlewis/go-reverselookup/internal/folding"
	"github.com/ianlewis/go-reverselookup/settings"
)

const (
	headerStart = "---"
	headerEnd   = "..."
	commentMark = "#"
	byteOrder   = "\ufeff"

	maxLineSize = 1 << 20
)

// ErrInvalidSource indicates a malformed dictionary source.
var ErrInvalidSource = errors.New("invalid dictionary source")

// Source is a parsed dictionary source.
type Source struct {
	// Settings is the source header. It is nil if the source has no header.
	Settings *settings.DictSettings

	Syllabary  *Syllabary
	Vocabulary Vocabulary
	Stems      StemTable

	// Checksum is the CRC-32 (IEEE) of the uncompressed source bytes.
	Checksum uint32

	// EntryCount is the number of entries added to Vocabulary.
	EntryCount int
}

type row struct {
	line      int
	text      string
	syllables []string
	weight    float64
}

type columns struct {
	text, code, weight, stem int
}

func newColumns(names []string) (columns, error) {
	c := columns{text: -1, code: -1, weight: -1, stem: -1}
	for i, name := range names {
		switch name {
		case settings.ColumnText:
			c.text = i
		case settings.ColumnCode:
			c.code = i
		case settings.ColumnWeight:
			c.weight = i
		case settings.ColumnStem:
			c.stem = i
		}
	}
	if c.text < 0 {
		return c, fmt.Errorf("%w: missing text column", ErrInvalidSource)
	}
	return c, nil
}

func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

// openFile opens the source at path. Sources ending in .gz or .dz are
// decompressed.
func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".gz" && ext != ".dz" {
		return f, nil
	}
	z, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	return &gzipFile{Reader: z, f: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	return errors.Join(g.Reader.Close(), g.f.Close())
}

// OpenSource parses the dictionary source at path. Sources ending in .gz or
// .dz are decompressed.
func OpenSource(path string) (*Source, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, err := ParseSource(f)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return src, nil
}

// ParseSource parses a dictionary source: an optional YAML settings header
// delimited by "---" and "..." lines followed by tab separated rows laid out as
// given by the settings' columns.
func ParseSource(r io.Reader) (*Source, error) {
	h := crc32.NewIEEE()
	s := bufio.NewScanner(io.TeeReader(r, h))
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	src := &Source{
		Vocabulary: Vocabulary{},
		Stems:      StemTable{},
	}

	var rows []row
	var header strings.Builder
	var cols columns
	started := false
	inHeader := false
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimRight(s.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, byteOrder)
		}

		if inHeader {
			if strings.TrimRight(line, " ") != headerEnd {
				header.WriteString(line)
				header.WriteByte('\n')
				continue
			}
			inHeader = false
			started = true
			var err error
			src.Settings, err = settings.Parse(header.String())
			if err != nil {
				return nil, fmt.Errorf("%w: header: %w", ErrInvalidSource, err)
			}
			cols, err = newColumns(src.Settings.Columns())
			if err != nil {
				return nil, err
			}
			continue
		}

		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, commentMark) {
			continue
		}

		if !started {
			// The header may only precede the first row.
			if strings.TrimRight(line, " ") == headerStart {
				inHeader = true
				continue
			}
			started = true
			var err error
			cols, err = newColumns(settings.DefaultColumns)
			if err != nil {
				return nil, err
			}
		}

		fields := strings.Split(line, "\t")
		text := field(fields, cols.text)
		if text == "" {
			return nil, fmt.Errorf("%w: line %d: missing text", ErrInvalidSource, lineNo)
		}

		if stem := field(fields, cols.stem); stem != "" {
			src.Stems.Add(text, stem)
		}

		code, _, err := transform.String(folding.Code(), field(fields, cols.code))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidSource, lineNo, err)
		}
		if code == "" {
			// Entries without a code are only encoded by a phrase encoder.
			continue
		}

		var weight float64
		if w := strings.TrimSpace(field(fields, cols.weight)); w != "" {
			weight, err = parseWeight(w)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad weight %q", ErrInvalidSource, lineNo, w)
			}
		}

		rows = append(rows, row{
			line:      lineNo,
			text:      text,
			syllables: strings.Split(code, " "),
			weight:    weight,
		})
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scanning dictionary source: %w", err)
	}
	if inHeader {
		return nil, fmt.Errorf("%w: unterminated header", ErrInvalidSource)
	}

	var all []string
	for _, rw := range rows {
		all = append(all, rw.syllables...)
	}
	slices.Sort(all)
	src.Syllabary = NewSyllabary(slices.Compact(all)...)

	for _, rw := range rows {
		code := make(Code, 0, len(rw.syllables))
		for _, syllable := range rw.syllables {
			id, ok := src.Syllabary.ID(syllable)
			if !ok {
				return nil, fmt.Errorf("%w: line %d: unknown syllable %q", ErrInvalidSource, rw.line, syllable)
			}
			code = append(code, id)
		}
		src.Vocabulary.Add(&Entry{
			Text:   rw.text,
			Code:   code,
			Weight: rw.weight,
		})
		src.EntryCount++
	}

	for text, stems := range src.Stems {
		slices.Sort(stems)
		src.Stems[text] = stems
	}

	src.Checksum = h.Sum32()
	return src, nil
}

// parseWeight parses a weight column. Percentages are accepted.
func parseWeight(w string) (float64, error) {
	if p, ok := strings.CutSuffix(w, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, err
		}
		return v / 100, nil
	}
	return strconv.ParseFloat(w, 64)
}

// FileChecksum returns the CRC-32 (IEEE) of the source at path. It matches the
// Checksum of the Source opened from the same file.
func FileChecksum(path string) (uint32, error) {
	f, err := openFile(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := crc32.NewIEEE()
	if _, err := io.Copy(h, f); err != nil {
		return 0, fmt.Errorf("reading %q: %w", path, err)
	}
	return h.Sum32(), nil
}
