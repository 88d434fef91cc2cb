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
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/ianlewis/go-reverselookup/db"
	"github.com/ianlewis/go-reverselookup/resource"
	"github.com/ianlewis/go-reverselookup/schema"
)

// Component creates dictionaries by name. Dictionaries of the same name share
// one store.
type Component struct {
	resolver *resource.Resolver
	options  *db.Options

	mu   sync.Mutex
	pool map[string]*db.DB
}

// NewComponent returns a Component resolving store paths with resolver.
func NewComponent(resolver *resource.Resolver, options *db.Options) *Component {
	return &Component{
		resolver: resolver,
		options:  options,
		pool:     map[string]*db.DB{},
	}
}

// Create returns the named dictionary. The dictionary is not loaded.
func (c *Component) Create(name string) *Dictionary {
	return New(name, c.store(name))
}

// CreateFromTicket returns the dictionary named in the ticket's namespace. It
// returns nil if the ticket names no dictionary.
func (c *Component) CreateFromTicket(ticket schema.Ticket) *Dictionary {
	name, ok := schema.DictName(ticket)
	if !ok {
		return nil
	}
	return c.Create(name)
}

func (c *Component) store(name string) *db.DB {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d, ok := c.pool[name]; ok {
		return d
	}
	d := db.New(c.resolver.ResolvePath(name), c.options)
	c.pool[name] = d
	return d
}

// Close closes every store created by the component.
func (c *Component) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, name := range slices.Sorted(maps.Keys(c.pool)) {
		if err := c.pool[name].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	clear(c.pool)
	return errors.Join(errs...)
}
