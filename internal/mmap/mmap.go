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

// Package mmap maps files into memory read-only.
package mmap

import (
	"errors"
	"fmt"
	"math"
	"os"
)

// ErrTooLarge indicates a file too large to map.
var ErrTooLarge = errors.New("file too large to map")

// File is a read-only file mapping.
type File struct {
	// Data is the file contents. It is nil for empty files and after Close.
	Data []byte

	unmap func([]byte) error
}

// Open maps the file at path into memory. The file itself is closed before
// Open returns; the mapping stays valid until Close.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	size := fi.Size()
	if size == 0 {
		return &File{}, nil
	}
	if size < 0 || size > math.MaxInt {
		return nil, fmt.Errorf("%w: %q is %d bytes", ErrTooLarge, path, size)
	}

	data, unmap, err := mapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mapping %q: %w", path, err)
	}
	return &File{
		Data:  data,
		unmap: unmap,
	}, nil
}

// Close releases the mapping. It is safe to call more than once.
func (m *File) Close() error {
	if m == nil || m.Data == nil {
		return nil
	}
	data := m.Data
	m.Data = nil
	if m.unmap == nil {
		return nil
	}
	return m.unmap(data)
}
