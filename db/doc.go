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

// Package db implements the on-disk reverse lookup store.
//
// A store is a single file laid out as a fixed little-endian header followed
// by the records it references:
//
//	offset  size  field
//	     0    32  format tag, NUL padded ("Reverse/3.1")
//	    32     4  source dictionary checksum
//	    36     8  settings document (offset, size)
//	    44     8  key trie image (offset, size)
//	    52     8  value trie image (offset, size)
//	    60     4  index size (entries)
//	    64     4  index offset
//	    68     4  reserved
//
// The index is an array of value ids addressed by key id. A lookup resolves
// the key id in the key trie, reads the value id from the index and resolves
// it in the value trie.
//
// The format tag is written last when building so a store without a tag is
// never loaded.
package db
