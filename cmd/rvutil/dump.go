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
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/ianlewis/go-dictzip"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-reverselookup/revindex"
)

// Entry kinds written by dump.
const (
	kindPronunciation = "pronunciation"
	kindStem          = "stem"
)

var dumpCommand = &cli.Command{
	Name:      "dump",
	Usage:     "write every entry of a dictionary as tab separated text",
	ArgsUsage: "[NAME]",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Usage:   "write to `FILE` instead of standard output",
			Aliases: []string{"o"},
		},
		&cli.BoolFlag{
			Name:  "dictzip",
			Usage: "compress the output with dictzip; requires --output",
		},
	}, dictFlags...),
	Action: func(c *cli.Context) error {
		if c.NArg() > 1 {
			return fmt.Errorf("%w: expected at most one NAME argument", ErrFlagParse)
		}
		if c.NArg() == 1 {
			check(c.Set("dict", c.Args().First()))
		}
		if c.Bool("dictzip") && c.String("output") == "" {
			return fmt.Errorf("%w: --dictzip requires --output", ErrFlagParse)
		}

		component := getEnv(c).component()
		defer closeAll(c.App.ErrWriter, component)

		d, err := openDictionary(c, component)
		if err != nil {
			return err
		}

		var w io.Writer = c.App.Writer
		if path := c.String("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating %q: %w", path, err)
			}
			defer closeAll(c.App.ErrWriter, f)
			w = f

			if c.Bool("dictzip") {
				z, err := dictzip.NewWriter(f)
				if err != nil {
					return fmt.Errorf("creating %q: %w", path, err)
				}
				if err := dump(z, d.DB().All()); err != nil {
					_ = z.Close()
					return err
				}
				return z.Close()
			}
		}

		return dump(w, d.DB().All())
	},
}

// dump writes entries as "text\tkind\tvalue" lines.
func dump(w io.Writer, entries iter.Seq2[string, string]) error {
	bw := bufio.NewWriter(w)
	for key, value := range entries {
		kind := kindPronunciation
		if text, ok := strings.CutSuffix(key, revindex.StemKeySuffix); ok {
			key, kind = text, kindStem
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\n", key, kind, value); err != nil {
			return err
		}
	}
	return bw.Flush()
}
