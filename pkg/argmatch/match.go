// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argmatch

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"tailscale.com/types/logger"
	"tailscale.com/util/mak"
)

const endOfOptions = "--"

// Parser matches token sequences against a Registry.
//
// A Parser holds no per-parse state and may be used from several
// goroutines at once.
type Parser struct {
	Registry *Registry

	// Handlers resolves TransformKey and predicate handler keys. If nil,
	// the builtin handlers are used.
	Handlers *Handlers

	// Logf, if non-nil, receives a trace of how each token was matched.
	Logf logger.Logf
}

// Parse matches tokens against reg using the builtin handlers.
func Parse(reg *Registry, tokens []string) (*Result, error) {
	return (&Parser{Registry: reg}).Parse(tokens)
}

// ParseString tokenizes line with Tokenize and parses the result against reg.
func ParseString(reg *Registry, line string) (*Result, error) {
	return (&Parser{Registry: reg}).ParseString(line)
}

// ParseString tokenizes line with Tokenize and parses the result.
func (p *Parser) ParseString(line string) (*Result, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return nil, err
	}
	return p.Parse(tokens)
}

// Parse matches tokens in a single left-to-right pass.
//
// Every detectable problem is collected; if there are any, Parse returns a
// nil Result and an Errors value listing them all in the order they were
// found.
func (p *Parser) Parse(tokens []string) (*Result, error) {
	reg := p.Registry
	if reg == nil {
		reg = &Registry{}
	}
	s := &scan{
		reg:      reg,
		handlers: p.Handlers,
		logf:     p.Logf,
		tokens:   tokens,
	}
	if s.handlers == nil {
		s.handlers = defaultHandlers
	}
	if s.logf == nil {
		s.logf = logger.Discard
	}
	s.run()
	s.finish()
	if len(s.errs) > 0 {
		return nil, s.errs
	}
	return &Result{values: s.values, supplied: s.supplied, order: s.order()}, nil
}

// scan is the state of one Parse call.
type scan struct {
	reg      *Registry
	handlers *Handlers
	logf     logger.Logf
	tokens   []string

	slot     int // index of the next unfilled positional
	rest     []string
	values   Values
	supplied map[string]bool
	errs     Errors
}

// option is an option-like token split into its parts.
type option struct {
	key    string
	short  bool
	value  string
	inline bool // value came from key=value or key:value
}

func (s *scan) run() {
	afterEnd := false
	for i := 0; i < len(s.tokens); i++ {
		tok := s.tokens[i]
		if afterEnd {
			s.plain(tok)
			continue
		}
		if tok == endOfOptions {
			s.logf("argmatch: %q ends options", tok)
			afterEnd = true
			continue
		}
		opt, ok := s.classify(tok)
		if !ok {
			s.plain(tok)
			continue
		}

		def := s.lookup(opt)
		if def == nil {
			s.logf("argmatch: %q matches no key", tok)
			s.fail(UnknownArgument, tok, "unknown argument %s", tok)
			continue
		}

		switch def.Kind {
		case Flag:
			s.flag(def, tok, opt)
		case Keyword:
			switch {
			case opt.inline:
				s.store(def, opt.value)
			case i+1 < len(s.tokens) && s.isValue(s.tokens[i+1]):
				i++
				s.logf("argmatch: %q takes value %q", tok, s.tokens[i])
				s.store(def, s.tokens[i])
			case def.ValueOptional != nil:
				s.logf("argmatch: %q has no value, using sentinel", tok)
				if raw, ok := def.ValueOptional.(string); ok {
					s.store(def, raw)
				} else {
					s.set(def, cloneValue(def.ValueOptional))
				}
			default:
				mak.Set(&s.supplied, def.Ident, true)
				s.fail(MissingRequiredValue, def.Ident, "%s requires a value", tok)
			}
		}
	}
}

// classify reports whether tok is option-like and, if so, splits it.
func (s *scan) classify(tok string) (option, bool) {
	switch {
	case strings.HasPrefix(tok, "--"):
		key, value, inline := splitInline(tok[2:])
		return option{key: key, value: value, inline: inline}, true

	case strings.HasPrefix(tok, "-") && len(tok) > 1:
		key, value, inline := splitInline(tok[1:])
		if isNumeric(tok) {
			// Negative numbers are values unless they spell a short key.
			if _, ok := s.reg.LookupShort(key); !ok {
				return option{}, false
			}
		}
		return option{key: key, short: true, value: value, inline: inline}, true
	}

	// Bare key=value resolves long keys only; short keys always need a dash.
	if i := strings.IndexAny(tok, "=:"); i > 0 {
		if _, ok := s.reg.LookupLong(tok[:i]); ok {
			return option{key: tok[:i], value: tok[i+1:], inline: true}, true
		}
	}
	return option{}, false
}

// splitInline splits "key=value" or "key:value" at the first separator.
func splitInline(body string) (key, value string, inline bool) {
	if i := strings.IndexAny(body, "=:"); i >= 0 {
		return body[:i], body[i+1:], true
	}
	return body, "", false
}

func (s *scan) lookup(opt option) *Definition {
	if opt.short {
		if utf8.RuneCountInString(opt.key) != 1 {
			// Bundled short keys (-ab) are not supported.
			return nil
		}
		d, _ := s.reg.LookupShort(opt.key)
		return d
	}
	d, _ := s.reg.LookupLong(opt.key)
	return d
}

// isValue reports whether tok may be consumed as a Keyword's value.
func (s *scan) isValue(tok string) bool {
	if tok == endOfOptions {
		return false
	}
	_, opt := s.classify(tok)
	return !opt
}

func (s *scan) flag(def *Definition, tok string, opt option) {
	if !opt.inline {
		s.logf("argmatch: %q sets flag %s", tok, def.Ident)
		s.set(def, true)
		return
	}
	b, err := strconv.ParseBool(opt.value)
	if err != nil {
		mak.Set(&s.supplied, def.Ident, true)
		s.errs = append(s.errs, &ParseError{
			Kind:    ValidationFailed,
			Subject: def.Ident,
			Message: fmt.Sprintf("invalid value %q for flag %s: expected a boolean", opt.value, def.Name()),
			Err:     err,
		})
		return
	}
	s.set(def, b)
}

func (s *scan) plain(tok string) {
	if s.slot < len(s.reg.positional) {
		def := s.reg.positional[s.slot]
		s.slot++
		s.logf("argmatch: %q fills positional %s", tok, def.Ident)
		s.store(def, tok)
		return
	}
	if s.reg.rest != nil {
		s.logf("argmatch: %q appended to %s", tok, s.reg.rest.Ident)
		s.rest = append(s.rest, tok)
		return
	}
	s.fail(UnknownArgument, tok, "unexpected argument %q", tok)
}

// store validates raw for def and records the result. The argument counts
// as supplied even when validation fails so it is reported only once.
func (s *scan) store(def *Definition, raw any) {
	v, perr := s.resolve(def, raw)
	if perr != nil {
		mak.Set(&s.supplied, def.Ident, true)
		s.errs = append(s.errs, perr)
		return
	}
	s.set(def, v)
}

func (s *scan) set(def *Definition, v any) {
	mak.Set(&s.values, def.Ident, v)
	mak.Set(&s.supplied, def.Ident, true)
}

func (s *scan) fail(kind ErrorKind, subject, format string, args ...any) {
	s.errs = append(s.errs, &ParseError{
		Kind:    kind,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	})
}

// finish resolves the collected rest tokens and fills in defaults.
func (s *scan) finish() {
	if rest := s.reg.rest; rest != nil && len(s.rest) > 0 {
		s.store(rest, s.rest)
	}
	for _, def := range s.reg.All() {
		if s.supplied[def.Ident] {
			continue
		}
		switch {
		case def.Default != nil:
			mak.Set(&s.values, def.Ident, cloneValue(def.Default))
		case def.Required:
			s.fail(MissingMandatoryArgument, def.Ident, "missing required argument %s", def.Name())
		case def.Kind == Flag:
			mak.Set(&s.values, def.Ident, false)
		case def.Kind == Rest:
			mak.Set(&s.values, def.Ident, any([]string{}))
		}
	}
}

// cloneValue returns a shallow copy of slice and map values so a Result
// never shares memory with its Registry.
func cloneValue(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out.Interface()
	}
	return v
}

func (s *scan) order() []string {
	out := make([]string, 0, len(s.values))
	for _, def := range s.reg.All() {
		if _, ok := s.values[def.Ident]; ok {
			out = append(out, def.Ident)
		}
	}
	return out
}

// isNumeric reports whether s is a decimal number such as "10", "-10" or
// "-3.14".
func isNumeric(s string) bool {
	if len(s) == 0 {
		return false
	}
	start := 0
	if s[0] == '-' || s[0] == '+' {
		if len(s) == 1 {
			return false
		}
		start = 1
	}
	hasDigit := false
	hasDot := false
	for i := start; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			hasDigit = true
		case s[i] == '.' && !hasDot:
			hasDot = true
		default:
			return false
		}
	}
	return hasDigit
}
