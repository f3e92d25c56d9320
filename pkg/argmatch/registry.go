// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argmatch

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Registry is an ordered, key-indexed set of argument definitions.
//
// A Registry is built once and then only read; it may be shared by any
// number of concurrent parses. Register must not be called once parsing
// has started.
type Registry struct {
	defs       *orderedmap.OrderedMap[string, *Definition]
	long       map[string]*Definition
	short      map[string]*Definition
	positional []*Definition
	rest       *Definition
}

// NewRegistry returns a Registry holding defs, registered in order.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(defs ...Definition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) init() {
	if r.defs == nil {
		r.defs = orderedmap.New[string, *Definition]()
		r.long = make(map[string]*Definition)
		r.short = make(map[string]*Definition)
	}
}

// Register adds a copy of def. It returns a *ParseError of kind
// DuplicateKeyword when one of def's keys is already taken, and a
// *DefinitionError for any other structural problem. A failed Register
// leaves the Registry unchanged.
func (r *Registry) Register(def Definition) error {
	r.init()
	if err := r.check(&def); err != nil {
		return err
	}

	d := &def
	r.defs.Set(d.Ident, d)
	if d.Long != "" {
		r.long[d.Long] = d
	}
	if d.Short != "" {
		r.short[d.Short] = d
	}
	switch d.Kind {
	case Positional:
		r.positional = append(r.positional, d)
	case Rest:
		r.rest = d
	}
	return nil
}

func (r *Registry) check(d *Definition) error {
	if d.Ident == "" {
		return &DefinitionError{Reason: "empty identifier"}
	}
	if _, dup := r.defs.Get(d.Ident); dup {
		return &DefinitionError{Ident: d.Ident, Reason: "identifier already registered"}
	}
	bad := func(format string, args ...any) error {
		return &DefinitionError{Ident: d.Ident, Reason: fmt.Sprintf(format, args...)}
	}

	switch d.Kind {
	case Positional, Rest:
		if d.Long != "" || d.Short != "" {
			return bad("%s arguments cannot have keys", d.Kind)
		}
	case Keyword, Flag:
		if d.Long == "" && d.Short == "" {
			return bad("%s needs a long or short key", d.Kind)
		}
	default:
		return bad("unknown kind %v", d.Kind)
	}
	if d.ValueOptional != nil && d.Kind != Keyword {
		return bad("only keyword arguments take a value-optional sentinel")
	}
	if d.Long != "" {
		if err := checkLongKey(d.Long); err != nil {
			return bad("%v", err)
		}
	}
	if d.Short != "" {
		if err := checkShortKey(d.Short); err != nil {
			return bad("%v", err)
		}
	}

	switch d.Kind {
	case Positional:
		if r.rest != nil {
			return bad("positional argument declared after rest argument %q", r.rest.Ident)
		}
		if d.Required {
			for _, p := range r.positional {
				if !p.Required {
					return bad("required positional argument declared after optional %q", p.Ident)
				}
			}
		}
	case Rest:
		if r.rest != nil {
			return bad("rest argument %q already declared", r.rest.Ident)
		}
	}

	if other, ok := r.long[d.Long]; ok && d.Long != "" {
		return &ParseError{
			Kind:    DuplicateKeyword,
			Subject: d.Ident,
			Message: fmt.Sprintf("key --%s of %q already used by %q", d.Long, d.Ident, other.Ident),
		}
	}
	if other, ok := r.short[d.Short]; ok && d.Short != "" {
		return &ParseError{
			Kind:    DuplicateKeyword,
			Subject: d.Ident,
			Message: fmt.Sprintf("key -%s of %q already used by %q", d.Short, d.Ident, other.Ident),
		}
	}
	return nil
}

func checkLongKey(k string) error {
	if strings.HasPrefix(k, "-") {
		return fmt.Errorf("long key %q must be given without dashes", k)
	}
	if strings.ContainsAny(k, "=:") || strings.IndexFunc(k, unicode.IsSpace) >= 0 {
		return fmt.Errorf("long key %q contains a separator or space", k)
	}
	return nil
}

func checkShortKey(k string) error {
	r, n := utf8.DecodeRuneInString(k)
	if n != len(k) || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
		return fmt.Errorf("short key %q must be a single letter or digit", k)
	}
	return nil
}

// Lookup returns the definition registered under ident.
func (r *Registry) Lookup(ident string) (*Definition, bool) {
	if r.defs == nil {
		return nil, false
	}
	return r.defs.Get(ident)
}

// LookupLong returns the Keyword or Flag whose long key is key.
func (r *Registry) LookupLong(key string) (*Definition, bool) {
	d, ok := r.long[key]
	return d, ok
}

// LookupShort returns the Keyword or Flag whose short key is key.
func (r *Registry) LookupShort(key string) (*Definition, bool) {
	d, ok := r.short[key]
	return d, ok
}

// Positionals returns the Positional definitions in declared order.
func (r *Registry) Positionals() []*Definition {
	return append([]*Definition(nil), r.positional...)
}

// RestArg returns the Rest definition, if one is registered.
func (r *Registry) RestArg() (*Definition, bool) {
	return r.rest, r.rest != nil
}

// All returns every definition in registration order.
func (r *Registry) All() []*Definition {
	if r.defs == nil {
		return nil
	}
	out := make([]*Definition, 0, r.defs.Len())
	for pair := r.defs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	if r.defs == nil {
		return 0
	}
	return r.defs.Len()
}
