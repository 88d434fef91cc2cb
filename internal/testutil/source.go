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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ianlewis/go-dictzip"

	"github.com/ianlewis/go-reverselookup/settings"
)

// MakeSourceOptions are options for MakeSource.
type MakeSourceOptions struct {
	// Settings is written as the source header if not nil.
	Settings *settings.DictSettings

	// Ext is the file extension. Defaults to '.dict.yaml.dz' if DictZip is
	// true. Otherwise '.dict.yaml'.
	Ext string

	// DictZip indicates that the source should be compressed with DictZip.
	DictZip bool
}

// GetExt returns the file extension.
func (o *MakeSourceOptions) GetExt() string {
	if o != nil {
		if o.Ext != "" {
			return o.Ext
		}
		if o.DictZip {
			return ".dict.yaml.dz"
		}
	}
	return ".dict.yaml"
}

// MakeSource renders a dictionary source from rows of tab separated columns.
func MakeSource(t *testing.T, rows [][]string, opts *MakeSourceOptions) string {
	t.Helper()

	var b strings.Builder
	if opts != nil && opts.Settings != nil {
		b.WriteString("---\n")
		if err := opts.Settings.Save(&b); err != nil {
			t.Fatal(err)
		}
		b.WriteString("...\n\n")
	}
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

// MakeTempSource writes a dictionary source named name into a temporary
// directory and returns its path.
func MakeTempSource(t *testing.T, name string, rows [][]string, opts *MakeSourceOptions) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name+opts.GetExt())
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	src := []byte(MakeSource(t, rows, opts))
	if opts != nil && opts.DictZip {
		z, err := dictzip.NewWriter(f)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := z.Write(src); err != nil {
			t.Fatal(err)
		}
		if err := z.Close(); err != nil {
			t.Fatal(err)
		}
		return path
	}

	if _, err := f.Write(src); err != nil {
		t.Fatal(err)
	}
	return path
}
