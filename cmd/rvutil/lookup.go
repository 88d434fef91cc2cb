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

	"github.com/ianlewis/go-reverselookup"
	"github.com/ianlewis/go-reverselookup/schema"
)

// openDictionary opens the dictionary selected by the --dict flag or by the
// --schema and --namespace flags.
func openDictionary(c *cli.Context, component *reverselookup.Component) (*reverselookup.Dictionary, error) {
	var d *reverselookup.Dictionary
	switch {
	case c.String("dict") != "":
		d = component.Create(c.String("dict"))
	case c.String("schema") != "":
		s, err := schema.LoadFile(c.String("schema"))
		if err != nil {
			return nil, err
		}
		d = component.CreateFromTicket(schema.Ticket{
			Schema:    s,
			NameSpace: c.String("namespace"),
		})
		if d == nil {
			return nil, fmt.Errorf("%w: %s has no %s/dictionary", ErrNoDictionary, c.String("schema"), c.String("namespace"))
		}
	default:
		return nil, fmt.Errorf("%w: use --dict or --schema", ErrNoDictionary)
	}

	if err := d.Load(); err != nil {
		return nil, err
	}
	return d, nil
}

var dictFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "dict",
		Usage: "use the dictionary named `NAME`",
	},
	&cli.StringFlag{
		Name:  "schema",
		Usage: "use the dictionary configured in schema `FILE`",
	},
	&cli.StringFlag{
		Name:  "namespace",
		Usage: "read the dictionary name from `NS`/dictionary in the schema",
		Value: "reverse_lookup",
	},
}

var lookupCommand = &cli.Command{
	Name:      "lookup",
	Usage:     "look up the pronunciations and stems of text",
	ArgsUsage: "TEXT...",
	Flags:     dictFlags,
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return fmt.Errorf("%w: expected TEXT arguments", ErrFlagParse)
		}

		component := getEnv(c).component()
		defer closeAll(c.App.ErrWriter, component)

		d, err := openDictionary(c, component)
		if err != nil {
			return err
		}

		tbl := table.New("Text", "Pronunciations", "Stems").WithWriter(c.App.Writer)
		for _, text := range c.Args().Slice() {
			pronunciations, _ := d.ReverseLookup(text)
			stems, _ := d.LookupStems(text)
			tbl.AddRow(text, pronunciations, stems)
		}
		tbl.Print()
		return nil
	},
}
