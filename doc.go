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

// Package reverselookup implements reverse lookup dictionaries for input
// methods.
//
// A reverse lookup dictionary maps the text of a dictionary entry back to its
// pronunciations, for example a Chinese character to its pinyin readings. It
// also holds stem annotations used by phrase encoders. Dictionaries are
// compiled from a dictionary source into a read-only store file by package
// [github.com/ianlewis/go-reverselookup/db] and opened here by name or through
// a schema [schema.Ticket].
//
// Pronunciations of a text are joined with " | " and the syllables of each
// pronunciation with a single space:
//
//	c := reverselookup.NewComponent(resource.NewResolver(resource.ReverseDB, dir), nil)
//	d := c.Create("luna_pinyin")
//	if err := d.Load(); err != nil {
//		...
//	}
//	pronunciations, ok := d.ReverseLookup("好")
package reverselookup
