// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argmatch

import (
	"fmt"
	"reflect"
)

// resolve runs raw (a string, or []string for Rest) through def's transform
// and validation rule and returns the value to store.
func (s *scan) resolve(def *Definition, raw any) (any, *ParseError) {
	fail := func(err error, format string, args ...any) (any, *ParseError) {
		return nil, &ParseError{
			Kind:    ValidationFailed,
			Subject: def.Ident,
			Message: fmt.Sprintf(format, args...),
			Err:     err,
		}
	}

	working := raw
	transform := def.Transform
	if transform == nil && def.TransformKey != "" {
		t, err := s.handlers.Transform(def.TransformKey)
		if err != nil {
			return fail(err, "%s: %v", def.Name(), err)
		}
		transform = t
	}
	if transform != nil {
		v, err := transform(raw, def, s.values)
		if err != nil {
			return fail(err, "invalid value %s for %s: %v", quoteRaw(raw), def.Name(), err)
		}
		working = v
	}

	rule := def.Rule
	switch rule.Kind {
	case RuleNone:
	case RuleEnum:
		if !eachElem(working, func(e any) bool { return oneOf(e, rule.Allowed) }) {
			return fail(nil, "invalid value %s for %s: must be one of %v", quoteRaw(raw), def.Name(), rule.Allowed)
		}
	case RulePattern:
		if rule.Pattern == nil {
			return fail(nil, "%s: pattern rule without a pattern", def.Name())
		}
		if !matchRaw(raw, rule.Pattern.MatchString) {
			return fail(nil, "invalid value %s for %s: must match %s", quoteRaw(raw), def.Name(), rule.Pattern)
		}
	case RulePredicate:
		pred := rule.Predicate
		if pred == nil {
			p, err := s.handlers.Predicate(rule.Handler)
			if err != nil {
				return fail(err, "%s: %v", def.Name(), err)
			}
			pred = p
		}
		if !pred(working, def, s.values) {
			return fail(nil, "invalid value %s for %s", quoteRaw(raw), def.Name())
		}
	default:
		return fail(nil, "%s: unknown rule kind %d", def.Name(), rule.Kind)
	}
	return working, nil
}

func matchRaw(raw any, match func(string) bool) bool {
	switch raw := raw.(type) {
	case string:
		return match(raw)
	case []string:
		for _, s := range raw {
			if !match(s) {
				return false
			}
		}
		return true
	}
	return false
}

// oneOf reports whether v equals one of allowed. Numbers compare by value
// regardless of their Go type, so an int matches an int64 decoded from a
// definition file.
func oneOf(v any, allowed []any) bool {
	vf, vNum := toFloat(v)
	for _, a := range allowed {
		if reflect.DeepEqual(v, a) {
			return true
		}
		if af, aNum := toFloat(a); vNum && aNum && af == vf {
			return true
		}
	}
	return false
}

func quoteRaw(raw any) string {
	if s, ok := raw.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%q", raw)
}
