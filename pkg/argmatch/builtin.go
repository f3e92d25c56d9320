// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argmatch

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
)

// Port is a network port produced by the "port" transform.
type Port uint16

var defaultHandlers = DefaultHandlers()

// DefaultHandlers returns a new Handlers seeded with the builtin transforms
// and predicates:
//
//	transforms: int uint float bool duration url port csv semver uuid lower upper trim
//	predicates: nonempty positive nonnegative
//
// Scalar transforms applied to a Rest argument convert every element.
func DefaultHandlers() *Handlers {
	h := NewHandlers()
	h.MustRegister("int", scalar(strconv.Atoi))
	h.MustRegister("uint", scalar(func(s string) (uint, error) {
		u, err := strconv.ParseUint(s, 10, 0)
		return uint(u), err
	}))
	h.MustRegister("float", scalar(func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	}))
	h.MustRegister("bool", scalar(strconv.ParseBool))
	h.MustRegister("duration", scalar(time.ParseDuration))
	h.MustRegister("url", scalar(url.Parse))
	h.MustRegister("port", scalar(parsePort))
	h.MustRegister("semver", scalar(semver.NewVersion))
	h.MustRegister("uuid", scalar(uuid.Parse))
	h.MustRegister("lower", scalar(infallible(strings.ToLower)))
	h.MustRegister("upper", scalar(infallible(strings.ToUpper)))
	h.MustRegister("trim", scalar(infallible(strings.TrimSpace)))
	h.MustRegister("csv", TransformFunc(splitComma))

	h.MustRegister("nonempty", PredicateFunc(func(v any, _ *Definition, _ Values) bool {
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.String, reflect.Slice, reflect.Map:
			return rv.Len() > 0
		}
		return v != nil
	}))
	h.MustRegister("positive", numeric(func(f float64) bool { return f > 0 }))
	h.MustRegister("nonnegative", numeric(func(f float64) bool { return f >= 0 }))
	return h
}

func infallible(fn func(string) string) func(string) (string, error) {
	return func(s string) (string, error) { return fn(s), nil }
}

// scalar adapts a string parser into a TransformFunc that also maps over a
// Rest argument's []string.
func scalar[T any](parse func(string) (T, error)) TransformFunc {
	return func(v any, _ *Definition, _ Values) (any, error) {
		switch v := v.(type) {
		case string:
			return parse(v)
		case []string:
			out := make([]T, len(v))
			for i, s := range v {
				t, err := parse(s)
				if err != nil {
					return nil, err
				}
				out[i] = t
			}
			return out, nil
		}
		return nil, fmt.Errorf("cannot convert %T", v)
	}
}

func splitComma(v any, _ *Definition, _ Values) (any, error) {
	var in []string
	switch v := v.(type) {
	case string:
		in = []string{v}
	case []string:
		in = v
	default:
		return nil, fmt.Errorf("cannot split %T", v)
	}
	out := []string{}
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part == "" {
				continue
			}
			out = append(out, part)
		}
	}
	return out, nil
}

func parsePort(value string) (Port, error) {
	p, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return 0, fmt.Errorf("port must be between 0 and 65535, got %q", value)
		}
		return 0, fmt.Errorf("invalid port value %q", value)
	}
	return Port(p), nil
}

// eachElem reports whether ok holds for v, or for every element of v when v
// is a slice.
func eachElem(v any, ok func(any) bool) bool {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return ok(v)
	}
	for i := 0; i < rv.Len(); i++ {
		if !ok(rv.Index(i).Interface()) {
			return false
		}
	}
	return true
}

// toFloat converts any integer or float kind to float64.
func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func numeric(ok func(float64) bool) PredicateFunc {
	return func(v any, _ *Definition, _ Values) bool {
		return eachElem(v, func(e any) bool {
			f, isNum := toFloat(e)
			return isNum && ok(f)
		})
	}
}

// Range returns a predicate accepting numbers in [min, max]. Non-numeric
// values are rejected, so it is normally paired with a numeric transform.
func Range(min, max float64) PredicateFunc {
	return numeric(func(f float64) bool { return f >= min && f <= max })
}

// Length returns a predicate accepting strings of min to max runes, or
// slices of min to max elements. A negative max means no upper bound.
func Length(min, max int) PredicateFunc {
	return func(v any, _ *Definition, _ Values) bool {
		var n int
		switch v := v.(type) {
		case string:
			n = utf8.RuneCountInString(v)
		default:
			rv := reflect.ValueOf(v)
			if rv.Kind() != reflect.Slice {
				return false
			}
			n = rv.Len()
		}
		return n >= min && (max < 0 || n <= max)
	}
}

// PortRange returns a predicate accepting ports within rangeStr, written
// "min-max" (e.g. "1-65535"). It accepts Port values and numeric strings.
func PortRange(rangeStr string) (PredicateFunc, error) {
	lo, hi, err := parsePortRange(rangeStr)
	if err != nil {
		return nil, err
	}
	return func(v any, _ *Definition, _ Values) bool {
		return eachElem(v, func(e any) bool {
			if s, ok := e.(string); ok {
				p, err := parsePort(s)
				if err != nil {
					return false
				}
				e = p
			}
			f, ok := toFloat(e)
			return ok && f >= float64(lo) && f <= float64(hi)
		})
	}, nil
}

func parsePortRange(rangeStr string) (min, max uint16, err error) {
	parts := strings.Split(rangeStr, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid port range format %q (expected \"min-max\")", rangeStr)
	}
	minVal, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid min port in range %q: %w", rangeStr, err)
	}
	maxVal, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid max port in range %q: %w", rangeStr, err)
	}
	if minVal > maxVal {
		return 0, 0, fmt.Errorf("invalid port range %q: min (%d) > max (%d)", rangeStr, minVal, maxVal)
	}
	return uint16(minVal), uint16(maxVal), nil
}

// SemverConstraint returns a predicate accepting versions that satisfy
// expr (e.g. ">= 1.2, < 2"). It accepts *semver.Version values and version
// strings.
func SemverConstraint(expr string) (PredicateFunc, error) {
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %q: %w", expr, err)
	}
	return func(v any, _ *Definition, _ Values) bool {
		return eachElem(v, func(e any) bool {
			switch e := e.(type) {
			case *semver.Version:
				return c.Check(e)
			case string:
				ver, err := semver.NewVersion(e)
				return err == nil && c.Check(ver)
			}
			return false
		})
	}, nil
}
