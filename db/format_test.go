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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ianlewis/go-reverselookup/internal/testutil"
	"github.com/ianlewis/go-reverselookup/revindex"
)

var testOptions = &Options{
	Logger: slog.New(slog.DiscardHandler),
}

// TestCheckFormat tests the accepted format versions.
func TestCheckFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		err    error
	}{
		{format: Format},
		{format: "Reverse/3.0"},
		{format: "Reverse/3"},
		{format: "Reverse/3.2", err: ErrFormat},
		{format: "Reverse/3.10", err: ErrFormat},
		{format: "Reverse/4.0", err: ErrFormat},
		{format: "Reverse/2.9", err: ErrFormat},
		{format: "Reverse/x.y", err: ErrFormat},
		{format: "Reverse/", err: ErrFormat},
		{format: "Prism/3.1", err: ErrFormat},
		{format: "", err: ErrFormat},
	}

	for _, test := range tests {
		t.Run(test.format, func(t *testing.T) {
			t.Parallel()

			err := checkFormat(test.format)
			if !errors.Is(err, test.err) {
				t.Fatalf("checkFormat(%q): got %v, want %v", test.format, err, test.err)
			}
		})
	}
}

// TestParseMetadata tests header validation.
func TestParseMetadata(t *testing.T) {
	t.Parallel()

	valid := func() []byte {
		b := make([]byte, 128)
		putFormat(b, Format)
		m := &metadata{
			checksum:    99,
			settings:    span{offset: 72, size: 8},
			keyTrie:     span{offset: 80, size: 16},
			valueTrie:   span{offset: 96, size: 16},
			indexSize:   4,
			indexOffset: 112,
		}
		m.put(b)
		return b
	}

	m, err := parseMetadata(valid())
	if err != nil {
		t.Fatalf("parseMetadata: %v", err)
	}
	want := &metadata{
		format:      Format,
		checksum:    99,
		settings:    span{offset: 72, size: 8},
		keyTrie:     span{offset: 80, size: 16},
		valueTrie:   span{offset: 96, size: 16},
		indexSize:   4,
		indexOffset: 112,
	}
	if diff := cmp.Diff(want, m, cmp.AllowUnexported(metadata{}, span{})); diff != "" {
		t.Fatalf("parseMetadata (-want, +got):\n%s", diff)
	}

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{
			name: "short",
			mutate: func(b []byte) []byte {
				return b[:metadataSize-1]
			},
		},
		{
			name: "no format",
			mutate: func(b []byte) []byte {
				putFormat(b, "")
				return b
			},
		},
		{
			name: "settings out of range",
			mutate: func(b []byte) []byte {
				span{offset: 120, size: 16}.put(b[offSettings:])
				return b
			},
		},
		{
			name: "key trie out of range",
			mutate: func(b []byte) []byte {
				span{offset: 0xFFFFFFFF, size: 0xFFFFFFFF}.put(b[offKeyTrie:])
				return b
			},
		},
		{
			name: "index out of range",
			mutate: func(b []byte) []byte {
				byteOrder.PutUint32(b[offIndexSize:], 5)
				return b
			},
		},
		{
			name: "index overflow",
			mutate: func(b []byte) []byte {
				byteOrder.PutUint32(b[offIndexSize:], 0x40000001)
				return b
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := parseMetadata(test.mutate(valid()))
			if !errors.Is(err, ErrFormat) {
				t.Fatalf("parseMetadata: got %v, want %v", err, ErrFormat)
			}
		})
	}
}

// TestBuffer_allocate tests the build buffer bounds.
func TestBuffer_allocate(t *testing.T) {
	t.Parallel()

	if _, err := newBuffer(metadataSize - 1); !errors.Is(err, ErrAllocation) {
		t.Fatalf("newBuffer: got %v, want %v", err, ErrAllocation)
	}

	b, err := newBuffer(80)
	if err != nil {
		t.Fatalf("newBuffer: %v", err)
	}
	s, _, err := b.allocate(3)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if diff := cmp.Diff(span{offset: 0, size: 3}, s, cmp.AllowUnexported(span{})); diff != "" {
		t.Errorf("allocate (-want, +got):\n%s", diff)
	}
	s, _, err = b.allocate(4)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if diff := cmp.Diff(span{offset: 4, size: 4}, s, cmp.AllowUnexported(span{})); diff != "" {
		t.Errorf("aligned allocate (-want, +got):\n%s", diff)
	}
	if _, _, err := b.allocate(73); !errors.Is(err, ErrAllocation) {
		t.Fatalf("allocate past capacity: got %v, want %v", err, ErrAllocation)
	}
	if diff := cmp.Diff(8, len(b.bytes())); diff != "" {
		t.Errorf("used (-want, +got):\n%s", diff)
	}
}

func buildIndex(t *testing.T) *revindex.Index {
	t.Helper()

	syllabary, v := testutil.MakeVocabulary(t, nil, []testutil.Entry{
		{Text: "你", Code: "ni"},
		{Text: "好", Code: "hao"},
	})
	idx, err := revindex.Build(syllabary, v, nil)
	if err != nil {
		t.Fatalf("revindex.Build: %v", err)
	}
	return idx
}

// TestDB_interruptedBuild tests that an image flushed before its format tag
// is written cannot be loaded.
func TestDB_interruptedBuild(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.reverse.bin")
	idx := buildIndex(t)

	d := New(path, testOptions)
	if err := d.create(4096); err != nil {
		t.Fatalf("create: %v", err)
	}

	// A file created but never written carries no tag.
	if err := New(path, testOptions).Load(); !errors.Is(err, ErrFormat) {
		t.Fatalf("Load after create: got %v, want %v", err, ErrFormat)
	}

	if err := d.writeBody(idx, nil, 1); err != nil {
		t.Fatalf("writeBody: %v", err)
	}
	if err := d.flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	loaded := New(path, testOptions)
	if err := loaded.Load(); !errors.Is(err, ErrFormat) {
		t.Fatalf("Load: got %v, want %v", err, ErrFormat)
	}
	if loaded.IsOpen() {
		t.Error("IsOpen after failed Load: want false")
	}
}

// TestDB_Build_allocation tests that an undersized buffer fails the build.
func TestDB_Build_allocation(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.reverse.bin")
	idx := buildIndex(t)

	d := New(path, testOptions)
	if err := d.create(metadataSize); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := d.writeBody(idx, []byte("name: x\n"), 1); !errors.Is(err, ErrAllocation) {
		t.Fatalf("writeBody: got %v, want %v", err, ErrAllocation)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

// TestDB_Load_format tests loading stores with rewritten format tags.
func TestDB_Load_format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		err    error
	}{
		{format: Format},
		{format: "Reverse/3.0"},
		{format: "Reverse/3.2", err: ErrFormat},
		{format: "Reverse/4.1", err: ErrFormat},
		{format: "Other/3.1", err: ErrFormat},
	}

	for _, test := range tests {
		t.Run(test.format, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "test.reverse.bin")
			syllabary, v := testutil.MakeVocabulary(t, nil, []testutil.Entry{
				{Text: "你", Code: "ni"},
			})
			d := New(path, testOptions)
			if err := d.Build(nil, syllabary, v, nil, 0); err != nil {
				t.Fatalf("Build: %v", err)
			}
			if err := d.Save(); err != nil {
				t.Fatalf("Save: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			putFormat(data, test.format)
			if err := os.WriteFile(path, data, 0o600); err != nil {
				t.Fatal(err)
			}

			err = d.Load()
			if !errors.Is(err, test.err) {
				t.Fatalf("Load: got %v, want %v", err, test.err)
			}
			defer d.Close()

			if diff := cmp.Diff(test.err == nil, d.IsOpen()); diff != "" {
				t.Errorf("IsOpen (-want, +got):\n%s", diff)
			}
			if test.err == nil {
				if diff := cmp.Diff(test.format, d.Format()); diff != "" {
					t.Errorf("Format (-want, +got):\n%s", diff)
				}
				if v, ok := d.Lookup("你"); !ok || v != "ni" {
					t.Errorf("Lookup(你) = %q, %v; want ni", v, ok)
				}
			}
		})
	}
}

// recordingFile is an in-memory imageFile that logs each call and can fail a
// write at a given offset.
type recordingFile struct {
	data   []byte
	calls  []string
	failAt int64
}

var errWrite = errors.New("write failed")

func (f *recordingFile) WriteAt(b []byte, off int64) (int, error) {
	f.calls = append(f.calls, fmt.Sprintf("write %d", off))
	if off == f.failAt {
		return 0, errWrite
	}
	if end := int(off) + len(b); end > len(f.data) {
		f.data = append(f.data, make([]byte, end-len(f.data))...)
	}
	return copy(f.data[off:], b), nil
}

func (f *recordingFile) Truncate(size int64) error {
	f.calls = append(f.calls, fmt.Sprintf("truncate %d", size))
	f.data = f.data[:size]
	return nil
}

func (f *recordingFile) Sync() error {
	f.calls = append(f.calls, "sync")
	return nil
}

// TestWriteImage tests that the format tag reaches the file only after the
// rest of the image is synced.
func TestWriteImage(t *testing.T) {
	t.Parallel()

	image := make([]byte, 128)
	putFormat(image, Format)
	for i := formatMaxLength; i < len(image); i++ {
		image[i] = byte(i)
	}

	f := &recordingFile{failAt: -1}
	if err := writeImage(f, image); err != nil {
		t.Fatalf("writeImage: %v", err)
	}
	want := []string{"write 32", "truncate 128", "sync", "write 0", "sync"}
	if diff := cmp.Diff(want, f.calls); diff != "" {
		t.Errorf("calls (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff(image, f.data); diff != "" {
		t.Errorf("data (-want, +got):\n%s", diff)
	}

	// A failure writing the tag leaves the body without a tag.
	f = &recordingFile{failAt: offFormat}
	if err := writeImage(f, image); !errors.Is(err, errWrite) {
		t.Fatalf("writeImage: got %v, want %v", err, errWrite)
	}
	if diff := cmp.Diff(make([]byte, formatMaxLength), f.data[:formatMaxLength]); diff != "" {
		t.Errorf("tag (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff(image[formatMaxLength:], f.data[formatMaxLength:]); diff != "" {
		t.Errorf("body (-want, +got):\n%s", diff)
	}
}
