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
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-reverselookup"
	"github.com/ianlewis/go-reverselookup/db"
	"github.com/ianlewis/go-reverselookup/resource"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError
)

// ErrRvutil is a parent error for all command errors.
var ErrRvutil = errors.New("rvutil")

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = fmt.Errorf("%w: parsing flags", ErrRvutil)

// ErrNoDictionary indicates that no dictionary was selected.
var ErrNoDictionary = fmt.Errorf("%w: no dictionary", ErrRvutil)

var copyrightNames = []string{
	"2026 Ian Lewis",
}

const envKey = "env"

// appEnv is the state shared by all commands.
type appEnv struct {
	config   *Config
	logger   *slog.Logger
	resolver *resource.Resolver
}

func (r *appEnv) dbOptions() *db.Options {
	return &db.Options{
		Logger: r.logger,
	}
}

func (r *appEnv) component() *reverselookup.Component {
	return reverselookup.NewComponent(r.resolver, r.dbOptions())
}

// getEnv returns the state set up by the app's Before hook.
func getEnv(c *cli.Context) *appEnv {
	rt, ok := c.App.Metadata[envKey].(*appEnv)
	if !ok {
		panic("rvutil: environment not initialized")
	}
	return rt
}

// check checks the error and panics if not nil.
func check(err error) {
	if err != nil {
		panic(err)
	}
}

func setup(c *cli.Context) error {
	cfg, err := LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("data-dir") {
		cfg.DataDirs = c.StringSlice("data-dir")
	}
	if len(cfg.DataDirs) == 0 {
		cfg.DataDirs = dataLocations()
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	logger, err := cfg.NewLogger(c.App.ErrWriter)
	if err != nil {
		return err
	}

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[envKey] = &appEnv{
		config:   cfg,
		logger:   logger,
		resolver: resource.NewResolver(resource.ReverseDB, cfg.DataDirs...),
	}
	return nil
}

func newRvutilApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Build and query reverse lookup dictionaries.",
		Description: strings.Join([]string{
			"Reverse lookup dictionary utility written in Go.",
			"http://github.com/ianlewis/go-reverselookup",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "read configuration from `FILE`",
				Aliases: []string{"c"},
				EnvVars: []string{"RVUTIL_CONFIG"},
			},
			&cli.StringSliceFlag{
				Name:    "data-dir",
				Usage:   "resolve dictionaries in `DIR`; the first is where new dictionaries are built",
				Aliases: []string{"d"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log at `LEVEL` (debug, info, warn, error)",
			},

			// Special flags are shown at the end.
			&cli.BoolFlag{
				Name:               "help",
				Usage:              "print this help text and exit",
				Aliases:            []string{"h"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"V"},
				DisableDefaultText: true,
			},
		},
		Copyright:       strings.Join(copyrightNames, "\n"),
		HideHelp:        true,
		HideHelpCommand: true,
		Before:          setup,
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return fmt.Errorf("%w: %w", ErrFlagParse, err)
		},
		Action: func(c *cli.Context) error {
			if c.Bool("version") {
				return printVersion(c)
			}

			check(cli.ShowAppHelp(c))
			return nil
		},
		Commands: []*cli.Command{
			buildCommand,
			lookupCommand,
			infoCommand,
			dumpCommand,
			listCommand,
		},
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
	}
}

// closeAll closes c, reporting errors to w.
func closeAll(w io.Writer, c io.Closer) {
	if err := c.Close(); err != nil {
		fmt.Fprintln(w, err)
	}
}
