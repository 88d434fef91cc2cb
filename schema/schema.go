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

// Package schema implements input schema configuration documents and the
// tickets that select a configuration namespace within them.
package schema

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSchema indicates a malformed schema document.
var ErrInvalidSchema = errors.New("invalid schema")

// Config is a decoded configuration document.
type Config struct {
	root *yaml.Node
}

// LoadConfig reads a configuration document from r.
func LoadConfig(r io.Reader) (*Config, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	return &Config{root: root}, nil
}

// find returns the node at the "/" separated path.
func (c *Config) find(path string) *yaml.Node {
	if c == nil || c.root == nil {
		return nil
	}
	node := c.root
	for _, key := range strings.Split(path, "/") {
		if key == "" {
			continue
		}
		if node.Kind != yaml.MappingNode {
			return nil
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				next = node.Content[i+1]
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

// GetString returns the scalar value at the "/" separated path.
func (c *Config) GetString(path string) (string, bool) {
	node := c.find(path)
	if node == nil || node.Kind != yaml.ScalarNode || node.ShortTag() == "!!null" {
		return "", false
	}
	return node.Value, true
}

// Schema is an input schema.
type Schema struct {
	// ID is the schema id from schema/schema_id.
	ID string

	Config *Config
}

// Parse reads a schema document from r.
func Parse(r io.Reader) (*Schema, error) {
	config, err := LoadConfig(r)
	if err != nil {
		return nil, err
	}
	id, _ := config.GetString("schema/schema_id")
	return &Schema{
		ID:     id,
		Config: config,
	}, nil
}

// LoadFile reads the schema document at path.
func LoadFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return s, nil
}

// Ticket selects a namespace of a schema's configuration for a component.
type Ticket struct {
	Schema    *Schema
	NameSpace string
}

// DictName returns the dictionary named by the ticket's namespace.
func DictName(ticket Ticket) (string, bool) {
	if ticket.Schema == nil {
		return "", false
	}
	name, ok := ticket.Schema.Config.GetString(ticket.NameSpace + "/dictionary")
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
