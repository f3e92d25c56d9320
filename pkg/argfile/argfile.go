// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package argfile loads argument definitions from YAML or TOML files.
//
// A file lists its arguments in order:
//
//	arguments:
//	  - id: src
//	    kind: positional
//	  - id: out
//	    kind: keyword
//	    long: out
//	    short: o
//	    default: a.out
//	  - id: level
//	    kind: keyword
//	    long: level
//	    transform: int
//	    check: range:1..9
//
// The TOML form uses [[arguments]] tables with the same keys.
package argfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/yeetrun/argmatch/pkg/argmatch"
	"gopkg.in/yaml.v3"
)

// Format is a definition file encoding.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// FormatFromPath picks a Format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return "", fmt.Errorf("unsupported definition file extension %q (want .yaml, .yml or .toml)", filepath.Ext(path))
}

// File is the decoded form of a definition file.
type File struct {
	Arguments []Spec `yaml:"arguments" toml:"arguments"`
}

// Spec is one argument as written in a definition file.
type Spec struct {
	ID       string `yaml:"id" toml:"id"`
	Kind     string `yaml:"kind" toml:"kind"`
	Required *bool  `yaml:"required" toml:"required"`
	Long     string `yaml:"long" toml:"long"`
	Short    string `yaml:"short" toml:"short"`

	Default       any `yaml:"default" toml:"default"`
	ValueOptional any `yaml:"value_optional" toml:"value_optional"`

	// At most one of OneOf, Pattern and Check may be set.
	OneOf   []any  `yaml:"one_of" toml:"one_of"`
	Pattern string `yaml:"pattern" toml:"pattern"`
	Check   string `yaml:"check" toml:"check"`

	Transform string `yaml:"transform" toml:"transform"`
	Help      string `yaml:"help" toml:"help"`
}

// LoadFile reads the definition file at path and builds a Registry from it.
func LoadFile(path string) (*argmatch.Registry, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Decode(bytes.NewReader(b), format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	reg, err := f.Registry()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Decode reads a File from r. Unknown keys are an error.
func Decode(r io.Reader, format Format) (*File, error) {
	var f File
	switch format {
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case TOML:
		md, err := toml.NewDecoder(r).Decode(&f)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return &f, nil
}

// Registry builds a Registry from the file's arguments, in order.
func (f *File) Registry() (*argmatch.Registry, error) {
	reg := &argmatch.Registry{}
	for i, s := range f.Arguments {
		def, err := s.Definition()
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, s.ID, err)
		}
		if err := reg.Register(def); err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, s.ID, err)
		}
	}
	return reg, nil
}

// Definition converts s to an argmatch.Definition. Required defaults to
// true for positional arguments and false otherwise.
func (s Spec) Definition() (argmatch.Definition, error) {
	kind, err := argmatch.ParseKind(s.Kind)
	if err != nil {
		return argmatch.Definition{}, err
	}
	def := argmatch.Definition{
		Ident:         s.ID,
		Kind:          kind,
		Long:          s.Long,
		Short:         s.Short,
		Required:      kind == argmatch.Positional,
		Default:       s.Default,
		ValueOptional: s.ValueOptional,
		TransformKey:  s.Transform,
		Help:          s.Help,
	}
	if s.Required != nil {
		def.Required = *s.Required
	}

	rules := 0
	if s.OneOf != nil {
		rules++
		def.Rule = argmatch.OneOf(s.OneOf...)
	}
	if s.Pattern != "" {
		rules++
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return argmatch.Definition{}, fmt.Errorf("invalid pattern: %w", err)
		}
		def.Rule = argmatch.Matching(re)
	}
	if s.Check != "" {
		rules++
		r, err := checkRule(s.Check)
		if err != nil {
			return argmatch.Definition{}, err
		}
		def.Rule = r
	}
	if rules > 1 {
		return argmatch.Definition{}, errors.New("only one of one_of, pattern and check may be set")
	}
	return def, nil
}

// checkRule turns a check string into a Rule. Parameterised checks are
// written name:arg:
//
//	range:MIN..MAX    numeric range, inclusive
//	length:MIN..MAX   string or list length; MAX may be omitted
//	port-range:LO-HI  port range
//	semver:EXPR       version constraint
//
// Anything else names a predicate handler.
func checkRule(check string) (argmatch.Rule, error) {
	name, arg, hasArg := strings.Cut(check, ":")
	if !hasArg {
		return argmatch.CheckHandler(check), nil
	}
	var (
		pred argmatch.PredicateFunc
		err  error
	)
	switch name {
	case "range":
		var lo, hi float64
		lo, hi, err = parseBounds(arg, strconv.ParseFloat)
		pred = argmatch.Range(lo, hi)
	case "length":
		var lo, hi int64
		lo, hi, err = parseBounds(arg, func(s string, _ int) (int64, error) {
			if s == "" {
				return -1, nil
			}
			return strconv.ParseInt(s, 10, 0)
		})
		pred = argmatch.Length(int(lo), int(hi))
	case "port-range":
		pred, err = argmatch.PortRange(arg)
	case "semver":
		pred, err = argmatch.SemverConstraint(arg)
	default:
		return argmatch.Rule{}, fmt.Errorf("unknown check %q", name)
	}
	if err != nil {
		return argmatch.Rule{}, fmt.Errorf("check %q: %w", check, err)
	}
	return argmatch.Check(pred), nil
}

func parseBounds[T int64 | float64](s string, parse func(string, int) (T, error)) (lo, hi T, err error) {
	a, b, ok := strings.Cut(s, "..")
	if !ok {
		return lo, hi, fmt.Errorf("bounds %q must be written MIN..MAX", s)
	}
	if lo, err = parse(a, 64); err != nil {
		return lo, hi, err
	}
	if hi, err = parse(b, 64); err != nil {
		return lo, hi, err
	}
	return lo, hi, nil
}
