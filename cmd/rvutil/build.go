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

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-reverselookup/db"
	"github.com/ianlewis/go-reverselookup/resource"
	"github.com/ianlewis/go-reverselookup/vocab"
)

var sourceExts = []string{".dict.yaml.dz", ".dict.yaml.gz", ".dict.yaml", ".yaml"}

// dictName returns the name of the dictionary compiled from the source.
func dictName(path string, src *vocab.Source) string {
	if src.Settings != nil && src.Settings.Name != "" {
		return src.Settings.Name
	}
	base := filepath.Base(path)
	for _, ext := range sourceExts {
		if name, ok := strings.CutSuffix(base, ext); ok {
			return name
		}
	}
	return base
}

var buildCommand = &cli.Command{
	Name:      "build",
	Usage:     "build a reverse lookup dictionary from a dictionary source",
	ArgsUsage: "SOURCE [NAME]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output-dir",
			Usage:   "write the dictionary to `DIR` instead of the first data directory",
			Aliases: []string{"o"},
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 || c.NArg() > 2 {
			return fmt.Errorf("%w: expected SOURCE and an optional NAME", ErrFlagParse)
		}
		env := getEnv(c)
		path := c.Args().First()

		src, err := vocab.OpenSource(path)
		if err != nil {
			return err
		}

		name := c.Args().Get(1)
		if name == "" {
			name = dictName(path, src)
		}
		out := env.resolver.ResolvePath(name)
		if dir := c.String("output-dir"); dir != "" {
			out = filepath.Join(dir, resource.ReverseDB.FileName(name))
		}

		d := db.New(out, env.dbOptions())
		if err := d.Build(src.Settings, src.Syllabary, src.Vocabulary, src.Stems, src.Checksum); err != nil {
			return fmt.Errorf("building %s: %w", name, err)
		}
		entries := d.EntryCount()
		if err := d.Save(); err != nil {
			return fmt.Errorf("saving %s: %w", name, err)
		}

		_, err = fmt.Fprintf(c.App.Writer, "%s: %d entries written to %s\n", name, entries, out)
		return err
	},
}
