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
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-reverselookup"
)

var listCommand = &cli.Command{
	Name:      "list",
	Usage:     "list dictionaries",
	ArgsUsage: "[DIR...]",
	Action: func(c *cli.Context) error {
		env := getEnv(c)
		dirs := c.Args().Slice()
		if len(dirs) == 0 {
			dirs = env.config.DataDirs
		}

		var errs int
		tbl := table.New("Name", "Format", "Entries", "Checksum", "Path").WithWriter(c.App.Writer)
		for _, dir := range dirs {
			if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
				env.logger.Debug("skipping missing data directory", "dir", dir)
				continue
			}
			dicts, openErrs := reverselookup.OpenAll(dir, env.dbOptions())
			for _, err := range openErrs {
				fmt.Fprintln(c.App.ErrWriter, err)
			}
			errs += len(openErrs)

			for _, d := range dicts {
				tbl.AddRow(
					d.Name(),
					d.DB().Format(),
					d.DB().EntryCount(),
					fmt.Sprintf("%08x", d.DictFileChecksum()),
					d.DB().Path(),
				)
				closeAll(c.App.ErrWriter, d)
			}
		}
		tbl.Print()

		if errs > 0 {
			return fmt.Errorf("%w: %d dictionaries could not be opened", ErrRvutil, errs)
		}
		return nil
	},
}
