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
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// ErrConfig indicates an invalid configuration.
var ErrConfig = fmt.Errorf("%w: config", ErrRvutil)

// Config is the rvutil configuration.
type Config struct {
	// DataDirs are the dictionary directories. The first is where new
	// dictionaries are built.
	DataDirs []string `yaml:"data_dirs" env:"RVUTIL_DATA_DIRS" env-separator:":"`

	// LogLevel is the minimum level logged.
	LogLevel string `yaml:"log_level" env:"RVUTIL_LOG_LEVEL" env-default:"warn"`

	// LogFormat is either "text" or "json".
	LogFormat string `yaml:"log_format" env:"RVUTIL_LOG_FORMAT" env-default:"text"`
}

// LoadConfig reads the configuration from a YAML file and environment
// variables. Environment variables take precedence over the file. An empty
// path reads the environment only.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: file %s: %w", ErrConfig, path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrConfig, path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%w: read env: %w", ErrConfig, err)
	}
	return &cfg, nil
}

// NewLogger returns a logger writing to w as configured.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("%w: log level %q", ErrConfig, c.LogLevel)
	}
	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w: log format %q", ErrConfig, c.LogFormat)
	}
}
