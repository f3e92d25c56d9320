// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argmatch

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the matching behaviour of an argument.
type Kind int

const (
	// Positional arguments are matched by position among plain tokens.
	Positional Kind = iota + 1
	// Keyword arguments take a value after a long or short key.
	Keyword
	// Flag arguments are booleans set by the presence of their key.
	Flag
	// Rest collects the plain tokens left once all positionals are filled.
	Rest
)

func (k Kind) String() string {
	switch k {
	case Positional:
		return "positional"
	case Keyword:
		return "keyword"
	case Flag:
		return "flag"
	case Rest:
		return "rest"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns the Kind named by s ("positional", "keyword", "flag" or
// "rest"), case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positional", "pos":
		return Positional, nil
	case "keyword", "kw", "option":
		return Keyword, nil
	case "flag", "switch":
		return Flag, nil
	case "rest", "remaining":
		return Rest, nil
	}
	return 0, fmt.Errorf("unknown argument kind %q", s)
}

// hasKeys reports whether arguments of this kind are matched by key.
func (k Kind) hasKeys() bool {
	return k == Keyword || k == Flag
}

// Values is the in-progress result handed to transforms and predicates:
// identifier to resolved value for every argument matched so far. It must
// not be modified.
type Values map[string]any

// TransformFunc converts a raw matched value into its working value. The
// raw value is a string, or a []string for a Rest argument.
type TransformFunc func(value any, def *Definition, partial Values) (any, error)

// PredicateFunc reports whether a working value is acceptable.
type PredicateFunc func(value any, def *Definition, partial Values) bool

// RuleKind selects how a Rule validates.
type RuleKind int

const (
	RuleNone RuleKind = iota
	RuleEnum
	RulePattern
	RulePredicate
)

// Rule is the validation rule of a Definition. The zero Rule accepts
// everything.
type Rule struct {
	Kind RuleKind

	// Allowed is the enumerated set for RuleEnum, compared against the
	// working value after the transform.
	Allowed []any

	// Pattern is matched against the raw string for RulePattern.
	Pattern *regexp.Regexp

	// Predicate is called for RulePredicate. When nil, Handler names a
	// predicate in the Parser's Handlers.
	Predicate PredicateFunc
	Handler   string
}

// OneOf returns a Rule accepting only the given values.
func OneOf(values ...any) Rule {
	return Rule{Kind: RuleEnum, Allowed: values}
}

// Matching returns a Rule requiring the raw value to match re.
func Matching(re *regexp.Regexp) Rule {
	return Rule{Kind: RulePattern, Pattern: re}
}

// MustMatch is like Matching but compiles expr, panicking if it is invalid.
func MustMatch(expr string) Rule {
	return Matching(regexp.MustCompile(expr))
}

// Check returns a Rule that calls fn.
func Check(fn PredicateFunc) Rule {
	return Rule{Kind: RulePredicate, Predicate: fn}
}

// CheckHandler returns a Rule that calls the predicate registered under key.
func CheckHandler(key string) Rule {
	return Rule{Kind: RulePredicate, Handler: key}
}

// Definition describes one accepted argument. Definitions are copied into a
// Registry on registration and must be treated as read-only afterwards.
type Definition struct {
	// Ident is the unique lookup key in a Result.
	Ident string
	Kind  Kind

	// Long and Short are the keys of a Keyword or Flag, spelled without
	// their prefix ("out" for --out, "o" for -o). Short is a single letter
	// or digit.
	Long  string
	Short string

	Required bool
	// Default is used when the argument is absent. nil means no default.
	Default any
	// ValueOptional is used when a Keyword's key is present but no value
	// follows it. nil means a value is required.
	ValueOptional any

	Rule Rule

	// Transform converts the raw value before validation. When nil,
	// TransformKey names a transform in the Parser's Handlers.
	Transform    TransformFunc
	TransformKey string

	// Help is carried for help renderers; the parser ignores it.
	Help string
}

// Name returns how the argument is spelled on the command line: "--long",
// "-s", or the identifier for arguments without keys.
func (d *Definition) Name() string {
	switch {
	case d.Long != "":
		return "--" + d.Long
	case d.Short != "":
		return "-" + d.Short
	}
	return d.Ident
}

// DefOption customises a Definition built by one of the New* constructors.
type DefOption func(*Definition)

// Optional marks the argument as not required.
func Optional() DefOption {
	return func(d *Definition) { d.Required = false }
}

// Required marks the argument as required.
func Required() DefOption {
	return func(d *Definition) { d.Required = true }
}

// WithDefault sets the value used when the argument is absent.
func WithDefault(v any) DefOption {
	return func(d *Definition) { d.Default = v }
}

// WithValueOptional sets the value used when a Keyword's key has no value.
func WithValueOptional(v any) DefOption {
	return func(d *Definition) { d.ValueOptional = v }
}

// WithRule sets the validation rule.
func WithRule(r Rule) DefOption {
	return func(d *Definition) { d.Rule = r }
}

// WithTransform sets the transform function.
func WithTransform(fn TransformFunc) DefOption {
	return func(d *Definition) { d.Transform = fn }
}

// WithTransformHandler names a registered transform.
func WithTransformHandler(key string) DefOption {
	return func(d *Definition) { d.TransformKey = key }
}

// WithHelp sets the help text.
func WithHelp(s string) DefOption {
	return func(d *Definition) { d.Help = s }
}

func newDefinition(d Definition, opts []DefOption) Definition {
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewPositional returns a Positional definition, required unless Optional
// is given.
func NewPositional(ident string, opts ...DefOption) Definition {
	return newDefinition(Definition{Ident: ident, Kind: Positional, Required: true}, opts)
}

// NewKeyword returns an optional Keyword definition. Either key may be empty.
func NewKeyword(ident, long, short string, opts ...DefOption) Definition {
	return newDefinition(Definition{Ident: ident, Kind: Keyword, Long: long, Short: short}, opts)
}

// NewFlag returns a Flag definition. Either key may be empty.
func NewFlag(ident, long, short string, opts ...DefOption) Definition {
	return newDefinition(Definition{Ident: ident, Kind: Flag, Long: long, Short: short}, opts)
}

// NewRest returns an optional Rest definition.
func NewRest(ident string, opts ...DefOption) Definition {
	return newDefinition(Definition{Ident: ident, Kind: Rest}, opts)
}
