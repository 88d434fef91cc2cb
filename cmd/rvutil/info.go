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

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-reverselookup/vocab"
)

var infoCommand = &cli.Command{
	Name:      "info",
	Usage:     "print information about a dictionary",
	ArgsUsage: "[NAME]",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:  "source",
			Usage: "report whether the dictionary is stale relative to source `FILE`",
		},
	}, dictFlags...),
	Action: func(c *cli.Context) error {
		if c.NArg() > 1 {
			return fmt.Errorf("%w: expected at most one NAME argument", ErrFlagParse)
		}
		if c.NArg() == 1 {
			check(c.Set("dict", c.Args().First()))
		}

		component := getEnv(c).component()
		defer closeAll(c.App.ErrWriter, component)

		d, err := openDictionary(c, component)
		if err != nil {
			return err
		}

		tbl := table.New("Field", "Value").WithWriter(c.App.Writer)
		tbl.AddRow("Name", d.Name())
		tbl.AddRow("Path", d.DB().Path())
		tbl.AddRow("Format", d.DB().Format())
		tbl.AddRow("Entries", d.DB().EntryCount())
		tbl.AddRow("Checksum", fmt.Sprintf("%08x", d.DictFileChecksum()))
		if s := d.DictSettings(); s != nil {
			rules := 0
			if s.Encoder != nil {
				rules = len(s.Encoder.Rules)
			}
			tbl.AddRow("Settings", s.Name)
			tbl.AddRow("Encoder rules", rules)
		}

		if source := c.String("source"); source != "" {
			sum, err := vocab.FileChecksum(source)
			if err != nil {
				return err
			}
			tbl.AddRow("Source checksum", fmt.Sprintf("%08x", sum))
			tbl.AddRow("Stale", sum != d.DictFileChecksum())
		}

		tbl.Print()
		return nil
	},
}
