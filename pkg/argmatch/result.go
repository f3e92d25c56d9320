// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argmatch

import "maps"

// Result is the outcome of a successful parse: a resolved value for every
// argument that was supplied or has a default, plus which of them were
// supplied explicitly. A Result is not modified after Parse returns it.
//
// Optional Positional and Keyword arguments that were neither supplied nor
// given a default have no entry. Flags without a default are false and Rest
// arguments without a default are an empty []string.
type Result struct {
	values   Values
	supplied map[string]bool
	order    []string
}

// Get returns the value for ident and whether it has one.
func (r *Result) Get(ident string) (any, bool) {
	v, ok := r.values[ident]
	return v, ok
}

// Value returns the value for ident, or nil.
func (r *Result) Value(ident string) any {
	return r.values[ident]
}

// Has reports whether ident has a value.
func (r *Result) Has(ident string) bool {
	_, ok := r.values[ident]
	return ok
}

// Supplied reports whether ident was given explicitly rather than
// defaulted.
func (r *Result) Supplied(ident string) bool {
	return r.supplied[ident]
}

// String returns the value for ident if it is a string.
func (r *Result) String(ident string) string {
	s, _ := r.values[ident].(string)
	return s
}

// Bool returns the value for ident if it is a bool.
func (r *Result) Bool(ident string) bool {
	b, _ := r.values[ident].(bool)
	return b
}

// Strings returns a copy of the value for ident if it is a []string.
func (r *Result) Strings(ident string) []string {
	ss, _ := r.values[ident].([]string)
	if ss == nil {
		return nil
	}
	return append([]string{}, ss...)
}

// Idents returns the identifiers that have a value, in registration order.
func (r *Result) Idents() []string {
	return append([]string(nil), r.order...)
}

// Map returns a copy of the identifier to value mapping.
func (r *Result) Map() map[string]any {
	m := maps.Clone(map[string]any(r.values))
	if m == nil {
		m = map[string]any{}
	}
	return m
}

// Len returns the number of identifiers with a value.
func (r *Result) Len() int {
	return len(r.values)
}

// Lookup returns the value for ident converted to T.
func Lookup[T any](r *Result, ident string) (T, bool) {
	v, ok := r.values[ident].(T)
	return v, ok
}
