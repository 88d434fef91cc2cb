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

package reverselookup

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ianlewis/go-reverselookup/db"
	"github.com/ianlewis/go-reverselookup/resource"
	"github.com/ianlewis/go-reverselookup/revindex"
	"github.com/ianlewis/go-reverselookup/settings"
)

// ErrNoStore indicates a Dictionary without a backing store.
var ErrNoStore = errors.New("no reverse lookup store")

// Dictionary is a reverse lookup dictionary backed by a store.
type Dictionary struct {
	name string
	db   *db.DB
}

// New returns a Dictionary named name backed by store.
func New(name string, store *db.DB) *Dictionary {
	return &Dictionary{
		name: name,
		db:   store,
	}
}

// Open opens and loads the store at path.
func Open(path string, options *db.Options) (*Dictionary, error) {
	name := strings.TrimSuffix(filepath.Base(path), resource.ReverseDB.Suffix)
	d := New(name, db.New(path, options))
	if err := d.Load(); err != nil {
		return nil, err
	}
	return d, nil
}

// OpenAll opens all stores under a directory. It returns all successfully
// opened dictionaries along with any errors that occurred.
func OpenAll(path string, options *db.Options) ([]*Dictionary, []error) {
	var dicts []*Dictionary
	var errs []error
	if err := filepath.WalkDir(path, func(path string, info fs.DirEntry, err error) error {
		// Unreadable entries are reported and skipped.
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), resource.ReverseDB.Suffix) {
			return nil
		}
		d, err := Open(path, options)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		dicts = append(dicts, d)
		return nil
	}); err != nil {
		errs = append(errs, err)
		return nil, errs
	}
	return dicts, errs
}

// Name returns the dictionary name.
func (d *Dictionary) Name() string {
	return d.name
}

// DB returns the backing store.
func (d *Dictionary) DB() *db.DB {
	return d.db
}

// Load loads the backing store unless it is already open.
func (d *Dictionary) Load() error {
	if d.db == nil {
		return fmt.Errorf("%w: %s", ErrNoStore, d.name)
	}
	if d.db.IsOpen() {
		return nil
	}
	return d.db.Load()
}

// ReverseLookup returns the pronunciations of text joined with " | ".
func (d *Dictionary) ReverseLookup(text string) (string, bool) {
	if d.db == nil {
		return "", false
	}
	return d.db.Lookup(text)
}

// LookupStems returns the stems of text joined with " ".
func (d *Dictionary) LookupStems(text string) (string, bool) {
	if d.db == nil {
		return "", false
	}
	return d.db.Lookup(text + revindex.StemKeySuffix)
}

// DictSettings returns the settings stored with the dictionary. It returns nil
// if the store holds no settings or they cannot be decoded.
func (d *Dictionary) DictSettings() *settings.DictSettings {
	if d.db == nil {
		return nil
	}
	doc := d.db.DictSettings()
	if doc == "" {
		return nil
	}
	s, err := settings.Decode(doc)
	if err != nil {
		return nil
	}
	return s
}

// DictFileChecksum returns the checksum of the dictionary source the store was
// built from. Comparing it with the current source is left to the caller.
func (d *Dictionary) DictFileChecksum() uint32 {
	if d.db == nil {
		return 0
	}
	return d.db.DictFileChecksum()
}

// Close closes the backing store. Dictionaries created by the same Component
// share a store.
func (d *Dictionary) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}
