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
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ianlewis/go-reverselookup/db"
	"github.com/ianlewis/go-reverselookup/internal/testutil"
	"github.com/ianlewis/go-reverselookup/resource"
	"github.com/ianlewis/go-reverselookup/schema"
	"github.com/ianlewis/go-reverselookup/settings"
	"github.com/ianlewis/go-reverselookup/vocab"
)

var testOptions = &db.Options{
	Logger: slog.New(slog.DiscardHandler),
}

var cangjie = &settings.DictSettings{
	Name:    "cangjie5",
	Version: "0.1",
	Encoder: &settings.EncoderSettings{
		Rules: []settings.EncoderRule{
			{LengthEqual: 2, Formula: "AaAzBaBbBz"},
			{LengthInRange: []int{3, 10}, Formula: "AaBaCaZaZz"},
		},
	},
}

// writeStore builds the named store in dir.
func writeStore(t *testing.T, dir, name string, s *settings.DictSettings, checksum uint32) {
	t.Helper()

	syllabary, v := testutil.MakeVocabulary(t, nil, []testutil.Entry{
		{Text: "好", Code: "hao"},
		{Text: "好", Code: "hao4"},
		{Text: "你好", Code: "ni hao"},
	})
	stems := vocab.StemTable{"好": {"女", "子"}}

	d := db.New(filepath.Join(dir, resource.ReverseDB.FileName(name)), testOptions)
	if err := d.Build(s, syllabary, v, stems, checksum); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := d.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

// TestDictionary tests the dictionary operations.
func TestDictionary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeStore(t, dir, "cangjie5", cangjie, 1234)

	c := NewComponent(resource.NewResolver(resource.ReverseDB, dir), testOptions)
	t.Cleanup(func() {
		_ = c.Close()
	})

	d := c.Create("cangjie5")
	if _, ok := d.ReverseLookup("好"); ok {
		t.Error("ReverseLookup before Load: want miss")
	}
	if err := d.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Load(); err != nil {
		t.Fatalf("second Load: %v", err)
	}

	tests := []struct {
		name   string
		lookup func(string) (string, bool)
		text   string
		want   string
		ok     bool
	}{
		{
			name:   "pronunciations",
			lookup: d.ReverseLookup,
			text:   "好",
			want:   "hao | hao4",
			ok:     true,
		},
		{
			name:   "phrase",
			lookup: d.ReverseLookup,
			text:   "你好",
			want:   "ni hao",
			ok:     true,
		},
		{
			name:   "stems",
			lookup: d.LookupStems,
			text:   "好",
			want:   "女 子",
			ok:     true,
		},
		{
			name:   "no stems",
			lookup: d.LookupStems,
			text:   "你好",
		},
		{
			name:   "stem key",
			lookup: d.ReverseLookup,
			text:   "好\x1fstem",
			want:   "女 子",
			ok:     true,
		},
		{
			name:   "miss",
			lookup: d.ReverseLookup,
			text:   "人",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, ok := test.lookup(test.text)
			if diff := cmp.Diff(test.ok, ok); diff != "" {
				t.Fatalf("ok (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("value (-want, +got):\n%s", diff)
			}
		})
	}

	if diff := cmp.Diff(cangjie, d.DictSettings()); diff != "" {
		t.Errorf("DictSettings (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff(uint32(1234), d.DictFileChecksum()); diff != "" {
		t.Errorf("DictFileChecksum (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff("cangjie5", d.Name()); diff != "" {
		t.Errorf("Name (-want, +got):\n%s", diff)
	}
}

// TestDictionary_DictSettings tests decoding stored settings.
func TestDictionary_DictSettings(t *testing.T) {
	t.Parallel()

	unnamed := &settings.DictSettings{
		Encoder: &settings.EncoderSettings{
			Rules: []settings.EncoderRule{{LengthEqual: 2, Formula: "AaAbBaBb"}},
		},
	}

	tests := []struct {
		name     string
		settings *settings.DictSettings
		want     *settings.DictSettings
	}{
		{
			name:     "rule based encoder",
			settings: cangjie,
			want:     cangjie,
		},
		{
			name:     "not stored",
			settings: &settings.DictSettings{Name: "luna_pinyin"},
		},
		{
			name:     "unnamed rule based encoder",
			settings: unnamed,
			want:     unnamed,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeStore(t, dir, "test", test.settings, 0)

			d, err := Open(filepath.Join(dir, "test.reverse.bin"), testOptions)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer d.Close()

			if diff := cmp.Diff(test.want, d.DictSettings()); diff != "" {
				t.Fatalf("DictSettings (-want, +got):\n%s", diff)
			}
		})
	}
}

// TestComponent_Create tests that dictionaries of the same name share a store.
func TestComponent_Create(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeStore(t, dir, "a", nil, 1)
	writeStore(t, dir, "b", nil, 2)

	c := NewComponent(resource.NewResolver(resource.ReverseDB, dir), testOptions)
	defer c.Close()

	a1 := c.Create("a")
	a2 := c.Create("a")
	b := c.Create("b")
	if a1.DB() != a2.DB() {
		t.Error("Create(a) twice: want shared store")
	}
	if a1.DB() == b.DB() {
		t.Error("Create(a), Create(b): want distinct stores")
	}

	if err := a1.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !a2.DB().IsOpen() {
		t.Error("a2 store after a1.Load: want open")
	}
	if diff := cmp.Diff(uint32(1), a2.DictFileChecksum()); diff != "" {
		t.Errorf("DictFileChecksum (-want, +got):\n%s", diff)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if a1.DB().IsOpen() {
		t.Error("store after Component.Close: want closed")
	}
}

// TestComponent_CreateFromTicket tests resolving dictionaries from tickets.
func TestComponent_CreateFromTicket(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeStore(t, dir, "stroke", nil, 0)

	s, err := schema.Parse(strings.NewReader(`schema:
  schema_id: luna_pinyin
reverse_lookup:
  dictionary: stroke
`))
	if err != nil {
		t.Fatalf("schema.Parse: %v", err)
	}

	c := NewComponent(resource.NewResolver(resource.ReverseDB, dir), testOptions)
	defer c.Close()

	d := c.CreateFromTicket(schema.Ticket{Schema: s, NameSpace: "reverse_lookup"})
	if d == nil {
		t.Fatal("CreateFromTicket: got nil")
	}
	if err := d.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, ok := d.ReverseLookup("你好"); !ok || v != "ni hao" {
		t.Errorf("ReverseLookup(你好) = %q, %v; want ni hao", v, ok)
	}

	if d := c.CreateFromTicket(schema.Ticket{Schema: s, NameSpace: "translator"}); d != nil {
		t.Errorf("CreateFromTicket(translator) = %v; want nil", d)
	}
	if d := c.CreateFromTicket(schema.Ticket{NameSpace: "reverse_lookup"}); d != nil {
		t.Errorf("CreateFromTicket(no schema) = %v; want nil", d)
	}
}

// TestOpenAll tests opening every store in a directory.
func TestOpenAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeStore(t, dir, "a", nil, 0)
	writeStore(t, filepath.Join(dir, "sub"), "b", nil, 0)
	// A store without a format tag is reported and skipped.
	syllabary, v := testutil.MakeVocabulary(t, nil, nil)
	bad := db.New(filepath.Join(dir, "bad.reverse.bin"), testOptions)
	if err := bad.Build(nil, syllabary, v, nil, 0); err != nil {
		t.Fatal(err)
	}
	if err := bad.Close(); err != nil {
		t.Fatal(err)
	}

	dicts, errs := OpenAll(dir, testOptions)
	var names []string
	for _, d := range dicts {
		names = append(names, d.Name())
		_ = d.Close()
	}
	if diff := cmp.Diff([]string{"a", "b"}, names); diff != "" {
		t.Errorf("OpenAll names (-want, +got):\n%s", diff)
	}
	if len(errs) != 1 {
		t.Errorf("OpenAll errors = %v; want 1 error", errs)
	}
}

// TestDictionary_noStore tests a Dictionary without a store.
func TestDictionary_noStore(t *testing.T) {
	t.Parallel()

	d := New("none", nil)
	if err := d.Load(); err == nil {
		t.Error("Load: expected failure")
	}
	if _, ok := d.ReverseLookup("x"); ok {
		t.Error("ReverseLookup: want miss")
	}
	if d.DictSettings() != nil {
		t.Error("DictSettings: want nil")
	}
}
