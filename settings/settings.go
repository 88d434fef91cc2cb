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

// Package settings implements dictionary settings documents.
//
// Dictionary settings are the YAML header of a dictionary source. They are
// embedded into a reverse lookup store when the dictionary uses a rule-based
// encoder so that the encoder can be reconstructed at runtime.
package settings

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Column names recognized in the columns setting.
const (
	ColumnText   = "text"
	ColumnCode   = "code"
	ColumnWeight = "weight"
	ColumnStem   = "stem"
)

// DefaultColumns is the column layout used when none is configured.
var DefaultColumns = []string{ColumnText, ColumnCode, ColumnWeight}

// ErrInvalidSettings indicates a malformed settings document.
var ErrInvalidSettings = errors.New("invalid dict settings")

// DictSettings are dictionary settings.
type DictSettings struct {
	Name                string           `yaml:"name"`
	Version             string           `yaml:"version,omitempty"`
	Sort                string           `yaml:"sort,omitempty"`
	UsePresetVocabulary bool             `yaml:"use_preset_vocabulary,omitempty"`
	MaxPhraseLength     int              `yaml:"max_phrase_length,omitempty"`
	MinPhraseWeight     float64          `yaml:"min_phrase_weight,omitempty"`
	ColumnNames         []string         `yaml:"columns,omitempty"`
	Encoder             *EncoderSettings `yaml:"encoder,omitempty"`
}

// EncoderSettings configure the phrase encoder.
type EncoderSettings struct {
	ExcludePatterns []string      `yaml:"exclude_patterns,omitempty"`
	Rules           []EncoderRule `yaml:"rules,omitempty"`
	TailAnchor      string        `yaml:"tail_anchor,omitempty"`
}

// EncoderRule is a single rule-based encoder formula.
type EncoderRule struct {
	LengthEqual   int    `yaml:"length_equal,omitempty"`
	LengthInRange []int  `yaml:"length_in_range,flow,omitempty"`
	Formula       string `yaml:"formula"`
}

// Load reads a dictionary source header from r. The header must name the
// dictionary.
func Load(r io.Reader) (*DictSettings, error) {
	s, err := decode(r)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidSettings)
	}
	return s, nil
}

// Parse parses a dictionary source header.
func Parse(doc string) (*DictSettings, error) {
	return Load(strings.NewReader(doc))
}

// Decode parses a settings document stored with a built dictionary. Unlike
// Parse it does not require a name.
func Decode(doc string) (*DictSettings, error) {
	return decode(strings.NewReader(doc))
}

func decode(r io.Reader) (*DictSettings, error) {
	var s DictSettings
	dec := yaml.NewDecoder(r)
	dec.KnownFields(false)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidSettings)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the encoder rules.
func (s *DictSettings) Validate() error {
	for _, r := range s.rules() {
		if r.Formula == "" {
			return fmt.Errorf("%w: encoder rule without formula", ErrInvalidSettings)
		}
		if len(r.LengthInRange) != 0 && len(r.LengthInRange) != 2 {
			return fmt.Errorf("%w: length_in_range needs two values", ErrInvalidSettings)
		}
	}
	return nil
}

func (s *DictSettings) rules() []EncoderRule {
	if s == nil || s.Encoder == nil {
		return nil
	}
	return s.Encoder.Rules
}

// UseRuleBasedEncoder reports whether the dictionary defines encoder rules.
func (s *DictSettings) UseRuleBasedEncoder() bool {
	return s != nil && len(s.rules()) > 0
}

// Columns returns the effective column layout.
func (s *DictSettings) Columns() []string {
	if s == nil || len(s.ColumnNames) == 0 {
		return DefaultColumns
	}
	return s.ColumnNames
}

// Save writes the settings document to w.
func (s *DictSettings) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding dict settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding dict settings: %w", err)
	}
	return nil
}

// String returns the settings document.
func (s *DictSettings) String() string {
	var b strings.Builder
	if err := s.Save(&b); err != nil {
		return ""
	}
	return b.String()
}
