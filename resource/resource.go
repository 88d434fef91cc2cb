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

// Package resource resolves resource names to file paths.
package resource

import (
	"os"
	"path/filepath"
)

// Type describes how a kind of resource is named on disk.
type Type struct {
	// Name identifies the resource type.
	Name string

	// Prefix and Suffix surround the resource name in its file name.
	Prefix string
	Suffix string
}

// ReverseDB is the resource type of reverse lookup stores.
var ReverseDB = Type{
	Name:   "reverse_db",
	Suffix: ".reverse.bin",
}

// FileName returns the file name of the named resource.
func (t Type) FileName(name string) string {
	return t.Prefix + name + t.Suffix
}

// Resolver resolves resources of one type under a list of root directories.
type Resolver struct {
	Type Type

	// RootPaths are searched in order. The first root is where new resources
	// are created.
	RootPaths []string
}

// NewResolver returns a Resolver for t searching the given roots.
func NewResolver(t Type, roots ...string) *Resolver {
	return &Resolver{
		Type:      t,
		RootPaths: roots,
	}
}

// ResolvePath returns the path of the named resource under the first root
// where it exists. If it exists under no root the path under the first root is
// returned.
func (r *Resolver) ResolvePath(name string) string {
	fileName := r.Type.FileName(name)
	if len(r.RootPaths) == 0 {
		return fileName
	}
	for _, root := range r.RootPaths {
		path := filepath.Join(root, fileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return filepath.Join(r.RootPaths[0], fileName)
}
