// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argmatch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	// UnknownArgument is an option-like token with no matching key, or a
	// plain token left over once every positional slot is filled and no
	// Rest argument is declared.
	UnknownArgument ErrorKind = iota + 1
	// MissingRequiredValue is a Keyword given without a value and without a
	// value-optional sentinel.
	MissingRequiredValue
	// ValidationFailed is a value rejected by a transform or validation rule.
	ValidationFailed
	// MissingMandatoryArgument is a required argument that received no value
	// and has no default.
	MissingMandatoryArgument
	// DuplicateKeyword is a key collision at registration time.
	DuplicateKeyword
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownArgument:
		return "unknown argument"
	case MissingRequiredValue:
		return "missing required value"
	case ValidationFailed:
		return "validation failed"
	case MissingMandatoryArgument:
		return "missing mandatory argument"
	case DuplicateKeyword:
		return "duplicate keyword"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinel errors, one per ErrorKind. A *ParseError matches the sentinel of
// its kind under errors.Is.
var (
	ErrUnknownArgument          = errors.New("unknown argument")
	ErrMissingRequiredValue     = errors.New("missing required value")
	ErrValidationFailed         = errors.New("validation failed")
	ErrMissingMandatoryArgument = errors.New("missing mandatory argument")
	ErrDuplicateKeyword         = errors.New("duplicate keyword")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case UnknownArgument:
		return ErrUnknownArgument
	case MissingRequiredValue:
		return ErrMissingRequiredValue
	case ValidationFailed:
		return ErrValidationFailed
	case MissingMandatoryArgument:
		return ErrMissingMandatoryArgument
	case DuplicateKeyword:
		return ErrDuplicateKeyword
	}
	return nil
}

// ParseError describes one problem found while parsing (or, for
// DuplicateKeyword, while registering).
type ParseError struct {
	Kind ErrorKind
	// Subject is the argument identifier, or the offending token when no
	// definition could be associated with it.
	Subject string
	Message string
	Err     error // underlying cause, if any (e.g. a transform error)
}

func (e *ParseError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Subject)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *ParseError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Errors is the accumulated list of problems from a single parse. A parse
// that returns a non-nil Errors produced no usable result.
type Errors []*ParseError

func (es Errors) Error() string {
	switch len(es) {
	case 0:
		return "no errors"
	case 1:
		return es[0].Error()
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(es), strings.Join(msgs, "; "))
}

func (es Errors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// OfKind returns the errors of the given kind, in the order they were found.
func (es Errors) OfKind(k ErrorKind) []*ParseError {
	var out []*ParseError
	for _, e := range es {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// DefinitionError is returned by Registry.Register for a structurally
// invalid definition. Key collisions are reported as a *ParseError of kind
// DuplicateKeyword instead.
type DefinitionError struct {
	Ident  string
	Reason string
}

func (e *DefinitionError) Error() string {
	if e.Ident == "" {
		return "invalid argument definition: " + e.Reason
	}
	return fmt.Sprintf("invalid argument definition %q: %s", e.Ident, e.Reason)
}
