// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argmatch

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Handlers maps symbolic keys to transforms and predicates so that many
// definitions can share one function by name.
//
// Handlers are meant to be registered up front; lookups during parsing only
// take a read lock.
type Handlers struct {
	mu sync.RWMutex
	m  map[string]any // TransformFunc or PredicateFunc
}

// NewHandlers returns an empty handler registry.
func NewHandlers() *Handlers {
	return &Handlers{m: make(map[string]any)}
}

// Register adds fn under key. fn must be a TransformFunc or a PredicateFunc
// (or a func literal of either signature). Each key can be registered once.
func (h *Handlers) Register(key string, fn any) error {
	var v any
	switch fn := fn.(type) {
	case TransformFunc:
		v = fn
	case func(any, *Definition, Values) (any, error):
		v = TransformFunc(fn)
	case PredicateFunc:
		v = fn
	case func(any, *Definition, Values) bool:
		v = PredicateFunc(fn)
	default:
		return fmt.Errorf("handler %q: unsupported function type %T", key, fn)
	}
	if key == "" {
		return fmt.Errorf("handler key is empty")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.m == nil {
		h.m = make(map[string]any)
	}
	if _, dup := h.m[key]; dup {
		return fmt.Errorf("handler %q already registered", key)
	}
	h.m[key] = v
	return nil
}

// MustRegister is like Register but panics on error.
func (h *Handlers) MustRegister(key string, fn any) {
	if err := h.Register(key, fn); err != nil {
		panic(err)
	}
}

// Resolve returns the function registered under key.
func (h *Handlers) Resolve(key string) (any, bool) {
	if h == nil {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn, ok := h.m[key]
	return fn, ok
}

// Transform returns the transform registered under key.
func (h *Handlers) Transform(key string) (TransformFunc, error) {
	fn, ok := h.Resolve(key)
	if !ok {
		return nil, fmt.Errorf("no handler registered for %q", key)
	}
	t, ok := fn.(TransformFunc)
	if !ok {
		return nil, fmt.Errorf("handler %q is not a transform", key)
	}
	return t, nil
}

// Predicate returns the predicate registered under key.
func (h *Handlers) Predicate(key string) (PredicateFunc, error) {
	fn, ok := h.Resolve(key)
	if !ok {
		return nil, fmt.Errorf("no handler registered for %q", key)
	}
	p, ok := fn.(PredicateFunc)
	if !ok {
		return nil, fmt.Errorf("handler %q is not a predicate", key)
	}
	return p, nil
}

// Keys returns the registered keys, sorted.
func (h *Handlers) Keys() []string {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Sorted(maps.Keys(h.m))
}

// Clone returns an independent copy of h. Cloning a nil *Handlers
// returns an empty, usable set.
func (h *Handlers) Clone() *Handlers {
	if h == nil {
		return &Handlers{}
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return &Handlers{m: maps.Clone(h.m)}
}
