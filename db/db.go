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
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ianlewis/go-reverselookup/internal/mmap"
	"github.com/ianlewis/go-reverselookup/revindex"
	"github.com/ianlewis/go-reverselookup/settings"
	"github.com/ianlewis/go-reverselookup/strtable"
	"github.com/ianlewis/go-reverselookup/vocab"
)

// reservedSize is header slack added to the estimated store size.
const reservedSize = 1024

var (
	// ErrOpen indicates the store file is missing or unreadable.
	ErrOpen = errors.New("cannot open reverse lookup store")

	// ErrFormat indicates missing metadata, a bad format tag, an incompatible
	// format version or a corrupt layout.
	ErrFormat = errors.New("invalid reverse lookup store format")

	// ErrAllocation indicates the store file or its build buffer could not be
	// created or is too small.
	ErrAllocation = errors.New("cannot allocate reverse lookup store")

	// ErrState indicates an operation that is not valid in the current state.
	ErrState = errors.New("invalid reverse lookup store state")
)

type state int

const (
	stateClosed state = iota
	stateLoaded
	stateBuilding
	stateCommitted
)

func (s state) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateLoaded:
		return "loaded"
	case stateBuilding:
		return "building"
	case stateCommitted:
		return "committed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options are options for a DB.
type Options struct {
	// Logger receives lifecycle logs. Defaults to [slog.Default].
	Logger *slog.Logger
}

// DefaultOptions are the default options for a DB.
var DefaultOptions = &Options{}

// DB is a reverse lookup store backed by a single file.
//
// Lifecycle operations (Load, Build, Save, Close) must not run concurrently
// with each other or with lookups. Once Load returns, lookups may run
// concurrently.
type DB struct {
	path   string
	logger *slog.Logger
	state  state

	// data is the mapped file once loaded or the build buffer while building.
	data []byte
	meta *metadata

	// Set once loaded.
	mapping *mmap.File
	keys    *strtable.Table
	values  *strtable.Table
	index   []byte

	// Set while building.
	file *os.File
	buf  *buffer
}

// New returns a closed DB for the store file at path.
func New(path string, options *Options) *DB {
	if options == nil {
		options = DefaultOptions
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{
		path:   path,
		logger: logger,
	}
}

// Path returns the path to the store file.
func (d *DB) Path() string {
	return d.path
}

// IsOpen reports whether the store is loaded or being built.
func (d *DB) IsOpen() bool {
	return d.state != stateClosed
}

// Load maps the store file read-only and validates its metadata. A loaded
// store is closed and loaded again. On failure the store is left closed.
func (d *DB) Load() error {
	d.logger.Info("loading reversedb", "path", d.path)

	if d.IsOpen() {
		if err := d.Close(); err != nil {
			return err
		}
	}

	if err := d.load(); err != nil {
		d.logger.Error("loading reversedb failed", "path", d.path, "err", err)
		_ = d.Close()
		return err
	}
	d.state = stateLoaded
	return nil
}

func (d *DB) load() error {
	var err error
	d.mapping, err = mmap.Open(d.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpen, err)
	}
	d.data = d.mapping.Data

	d.meta, err = parseMetadata(d.data)
	if err != nil {
		return fmt.Errorf("%q: %w", d.path, err)
	}

	// Ranges were checked by parseMetadata.
	image, _ := d.meta.keyTrie.bytes(d.data)
	d.keys, err = strtable.Open(image)
	if err != nil {
		return fmt.Errorf("%w: key trie: %w", ErrFormat, err)
	}
	image, _ = d.meta.valueTrie.bytes(d.data)
	d.values, err = strtable.Open(image)
	if err != nil {
		return fmt.Errorf("%w: value trie: %w", ErrFormat, err)
	}
	d.index, _ = d.meta.index().bytes(d.data)
	return nil
}

// Lookup returns the value stored for key. Empty values and stores that are
// not loaded report a miss.
func (d *DB) Lookup(key string) (string, bool) {
	if d.state != stateLoaded || d.meta.indexSize == 0 {
		return "", false
	}
	keyID, ok := d.keys.Lookup(key)
	if !ok {
		return "", false
	}
	value := d.values.GetString(d.valueID(keyID))
	return value, value != ""
}

func (d *DB) valueID(keyID strtable.ID) strtable.ID {
	if uint64(keyID) >= uint64(d.meta.indexSize) {
		return strtable.InvalidID
	}
	return strtable.ID(byteOrder.Uint32(d.index[keyID*idSize:]))
}

// All returns the key and value of every entry with a non-empty value in key
// id order.
func (d *DB) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if d.state != stateLoaded {
			return
		}
		for i := range d.keys.Len() {
			//nolint:gosec // i < Len() < InvalidID.
			keyID := strtable.ID(i)
			value := d.values.GetString(d.valueID(keyID))
			if value == "" {
				continue
			}
			if !yield(d.keys.GetString(keyID), value) {
				return
			}
		}
	}
}

// DictFileChecksum returns the checksum of the source dictionary the store
// was built from, or zero if the store is neither loaded nor built.
func (d *DB) DictFileChecksum() uint32 {
	if d.meta == nil {
		return 0
	}
	return d.meta.checksum
}

// DictSettings returns the stored dictionary settings document. It is empty
// unless the dictionary uses a rule-based encoder.
func (d *DB) DictSettings() string {
	if d.meta == nil {
		return ""
	}
	b, err := d.meta.settings.bytes(d.data)
	if err != nil {
		return ""
	}
	return string(b)
}

// EntryCount returns the number of entries in the store.
func (d *DB) EntryCount() int {
	if d.meta == nil {
		return 0
	}
	return int(d.meta.indexSize)
}

// Format returns the store's format tag. It is empty until the store is
// loaded or its build is committed.
func (d *DB) Format() string {
	if d.meta == nil {
		return ""
	}
	return d.meta.format
}

// Build builds the reverse index of the given dictionary and lays out a new
// store image. The image is written to disk by Save. The store file is
// created immediately and holds no format tag until Save completes.
func (d *DB) Build(
	dictSettings *settings.DictSettings,
	syllabary *vocab.Syllabary,
	vocabulary vocab.Vocabulary,
	stems vocab.StemTable,
	checksum uint32,
) error {
	if d.state != stateClosed {
		return fmt.Errorf("%w: build on %s store", ErrState, d.state)
	}
	d.logger.Info("building reversedb", "path", d.path)

	idx, err := revindex.Build(syllabary, vocabulary, stems)
	if err != nil {
		return fmt.Errorf("building reverse index: %w", err)
	}

	var blob []byte
	if dictSettings.UseRuleBasedEncoder() {
		if err := dictSettings.Validate(); err != nil {
			return fmt.Errorf("storing dict settings: %w", err)
		}
		var b bytes.Buffer
		if err := dictSettings.Save(&b); err != nil {
			return err
		}
		blob = b.Bytes()
	}

	capacity := reservedSize + len(blob) + idSize*idx.EntryCount +
		idx.Keys.BinarySize() + idx.Values.BinarySize()
	if err := d.create(capacity); err != nil {
		d.logger.Error("creating reversedb failed", "path", d.path, "err", err)
		return err
	}
	if err := d.writeBody(idx, blob, checksum); err != nil {
		d.logger.Error("building reversedb failed", "path", d.path, "err", err)
		_ = d.Close()
		return err
	}
	d.commit()
	return nil
}

// create creates the store file and a build buffer of the given capacity.
func (d *DB) create(capacity int) error {
	buf, err := newBuffer(capacity)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	f, err := os.Create(d.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	if err := f.Truncate(int64(capacity)); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}

	d.file = f
	d.buf = buf
	d.data = buf.data
	d.meta = &metadata{}
	d.state = stateBuilding
	return nil
}

// writeBody lays out everything but the format tag.
func (d *DB) writeBody(idx *revindex.Index, blob []byte, checksum uint32) error {
	_, header, err := d.buf.allocate(metadataSize)
	if err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	d.meta.checksum = checksum

	if len(blob) > 0 {
		s, b, err := d.buf.allocate(len(blob))
		if err != nil {
			return fmt.Errorf("dict settings: %w", err)
		}
		copy(b, blob)
		d.meta.settings = s
	}

	s, index, err := d.buf.allocate(idSize * idx.EntryCount)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	for i, keyID := range idx.KeyIDs {
		byteOrder.PutUint32(index[keyID*idSize:], uint32(idx.ValueIDs[i]))
	}
	d.meta.indexOffset = s.offset
	//nolint:gosec // EntryCount fits the capacity checked by newBuffer.
	d.meta.indexSize = uint32(idx.EntryCount)

	d.meta.keyTrie, err = d.dump("key trie", idx.Keys)
	if err != nil {
		return err
	}
	d.meta.valueTrie, err = d.dump("value trie", idx.Values)
	if err != nil {
		return err
	}

	d.meta.put(header)
	return nil
}

func (d *DB) dump(name string, b *strtable.Builder) (span, error) {
	s, image, err := d.buf.allocate(b.BinarySize())
	if err != nil {
		return span{}, fmt.Errorf("%s: %w", name, err)
	}
	if _, err := b.Dump(image); err != nil {
		return span{}, fmt.Errorf("%w: %s: %w", ErrAllocation, name, err)
	}
	return s, nil
}

// commit writes the format tag, marking the image complete.
func (d *DB) commit() {
	putFormat(d.buf.data, Format)
	d.meta.format = Format
	d.state = stateCommitted
}

// Save writes a committed store image to disk, trimmed to its used size, and
// closes the store.
func (d *DB) Save() error {
	if d.state != stateCommitted {
		return fmt.Errorf("%w: save on %s store", ErrState, d.state)
	}
	d.logger.Info("saving reversedb", "path", d.path, "size", d.buf.used)

	if err := d.flush(); err != nil {
		d.logger.Error("saving reversedb failed", "path", d.path, "err", err)
		_ = d.Close()
		return err
	}
	return d.Close()
}

// flush writes the used part of the build buffer to the store file.
func (d *DB) flush() error {
	if err := writeImage(d.file, d.buf.bytes()); err != nil {
		return fmt.Errorf("writing %q: %w", d.path, err)
	}
	return nil
}

// imageFile is the part of *os.File used to write a store image.
type imageFile interface {
	WriteAt(b []byte, off int64) (int, error)
	Truncate(size int64) error
	Sync() error
}

// writeImage writes image to f. Everything after the format tag is written
// and synced first, so the file only carries a tag once the rest of the
// image is on disk.
func writeImage(f imageFile, image []byte) error {
	if _, err := f.WriteAt(image[formatMaxLength:], formatMaxLength); err != nil {
		return err
	}
	if err := f.Truncate(int64(len(image))); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	if _, err := f.WriteAt(image[:formatMaxLength], offFormat); err != nil {
		return err
	}
	return f.Sync()
}

// Close closes the store. An unsaved build is discarded and the store file
// is left without a format tag.
func (d *DB) Close() error {
	var err error
	if d.mapping != nil {
		err = d.mapping.Close()
	}
	if d.file != nil {
		if cerr := d.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	d.state = stateClosed
	d.data = nil
	d.meta = nil
	d.mapping = nil
	d.keys = nil
	d.values = nil
	d.index = nil
	d.file = nil
	d.buf = nil

	if err != nil {
		return fmt.Errorf("closing %q: %w", d.path, err)
	}
	return nil
}
