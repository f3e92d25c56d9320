// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argmatch

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func exampleRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(
		NewPositional("src"),
		NewKeyword("out", "out", "o", WithDefault("a.out")),
		NewFlag("verbose", "verbose", ""),
		NewRest("extra"),
	)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return reg
}

func mustParse(t *testing.T, reg *Registry, tokens ...string) *Result {
	t.Helper()
	res, err := Parse(reg, tokens)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", tokens, err)
	}
	return res
}

func parseErrors(t *testing.T, reg *Registry, tokens ...string) Errors {
	t.Helper()
	res, err := Parse(reg, tokens)
	if err == nil {
		t.Fatalf("Parse(%q) = %v, want error", tokens, res.Map())
	}
	if res != nil {
		t.Errorf("Parse(%q) returned a result alongside errors", tokens)
	}
	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("Parse(%q) error = %T, want Errors", tokens, err)
	}
	return errs
}

func errorKinds(errs Errors) []ErrorKind {
	kinds := make([]ErrorKind, len(errs))
	for i, e := range errs {
		kinds[i] = e.Kind
	}
	return kinds
}

func TestParseExampleScenario(t *testing.T) {
	reg := exampleRegistry(t)
	res := mustParse(t, reg, "in.txt", "-o", "out.bin", "--verbose", "x", "y")

	want := map[string]any{
		"src":     "in.txt",
		"out":     "out.bin",
		"verbose": true,
		"extra":   []string{"x", "y"},
	}
	if diff := cmp.Diff(want, res.Map()); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	for _, id := range []string{"src", "out", "verbose", "extra"} {
		if !res.Supplied(id) {
			t.Errorf("Supplied(%q) = false, want true", id)
		}
	}
}

func TestParseDefaults(t *testing.T) {
	reg := exampleRegistry(t)
	res := mustParse(t, reg, "in.txt")

	want := map[string]any{
		"src":     "in.txt",
		"out":     "a.out",
		"verbose": false,
		"extra":   []string{},
	}
	if diff := cmp.Diff(want, res.Map()); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if res.Supplied("out") || res.Supplied("verbose") || res.Supplied("extra") {
		t.Errorf("defaulted arguments reported as supplied")
	}
	if got, want := res.Idents(), []string{"src", "out", "verbose", "extra"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Idents() = %v, want %v", got, want)
	}
}

func TestParseFlag(t *testing.T) {
	reg := MustRegistry(NewFlag("verbose", "verbose", "v"))

	tests := []struct {
		name   string
		tokens []string
		want   bool
	}{
		{"absent", nil, false},
		{"long", []string{"--verbose"}, true},
		{"short", []string{"-v"}, true},
		{"twice", []string{"--verbose", "-v"}, true},
		{"inline false", []string{"--verbose=false"}, false},
		{"inline true", []string{"-v=1"}, true},
		{"last wins", []string{"--verbose", "--verbose=false"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, reg, tt.tokens...)
			if got := res.Bool("verbose"); got != tt.want {
				t.Errorf("verbose = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFlagBadInlineValue(t *testing.T) {
	reg := MustRegistry(NewFlag("verbose", "verbose", "v"))
	errs := parseErrors(t, reg, "--verbose=maybe")
	if got := errorKinds(errs); !reflect.DeepEqual(got, []ErrorKind{ValidationFailed}) {
		t.Fatalf("kinds = %v, want [ValidationFailed]", got)
	}
}

func TestParseFlagDoesNotConsume(t *testing.T) {
	reg := MustRegistry(NewFlag("verbose", "verbose", "v"), NewPositional("file"))
	res := mustParse(t, reg, "-v", "main.go")
	if !res.Bool("verbose") || res.String("file") != "main.go" {
		t.Errorf("got %v", res.Map())
	}
}

func TestParseKeywordValueOptional(t *testing.T) {
	reg := MustRegistry(
		NewKeyword("mode", "mode", "m", WithValueOptional("maybe"), WithDefault("never")),
		NewFlag("force", "force", "f"),
		NewRest("rest"),
	)

	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{"absent uses default", nil, "never"},
		{"no following token", []string{"--mode"}, "maybe"},
		{"followed by option", []string{"-m", "--force"}, "maybe"},
		{"followed by end of options", []string{"--mode", "--", "x"}, "maybe"},
		{"followed by plain", []string{"--mode", "always"}, "always"},
		{"inline", []string{"--mode=always"}, "always"},
		{"inline empty", []string{"--mode="}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, reg, tt.tokens...)
			if got := res.String("mode"); got != tt.want {
				t.Errorf("mode = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseKeywordMissingValue(t *testing.T) {
	reg := MustRegistry(
		NewKeyword("out", "out", "o", Required()),
		NewFlag("verbose", "verbose", ""),
	)
	errs := parseErrors(t, reg, "--out", "--verbose")
	if got := errorKinds(errs); !reflect.DeepEqual(got, []ErrorKind{MissingRequiredValue}) {
		t.Fatalf("kinds = %v, want [MissingRequiredValue]", got)
	}
	if errs[0].Subject != "out" {
		t.Errorf("Subject = %q, want %q", errs[0].Subject, "out")
	}
}

func TestParseKeywordForms(t *testing.T) {
	reg := MustRegistry(NewKeyword("out", "out", "o"), NewRest("rest"))

	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{"long space", []string{"--out", "f"}, "f"},
		{"long equals", []string{"--out=f"}, "f"},
		{"long colon", []string{"--out:f"}, "f"},
		{"short space", []string{"-o", "f"}, "f"},
		{"short equals", []string{"-o=f"}, "f"},
		{"bare equals", []string{"out=f"}, "f"},
		{"bare colon", []string{"out:f"}, "f"},
		{"first separator splits", []string{"--out=a=b:c"}, "a=b:c"},
		{"url value", []string{"--out", "http://host:80/"}, "http://host:80/"},
		{"negative number value", []string{"--out", "-5"}, "-5"},
		{"last wins", []string{"--out", "a", "-o", "b"}, "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, reg, tt.tokens...)
			if got := res.String("out"); got != tt.want {
				t.Errorf("out = %q, want %q", got, tt.want)
			}
			if rest := res.Strings("rest"); len(rest) != 0 {
				t.Errorf("rest = %q, want empty", rest)
			}
		})
	}
}

func TestParseBareSeparatorWithoutKeyIsPlain(t *testing.T) {
	reg := MustRegistry(NewKeyword("out", "out", "o"), NewPositional("expr"))
	res := mustParse(t, reg, "a=b")
	if got := res.String("expr"); got != "a=b" {
		t.Errorf("expr = %q, want %q", got, "a=b")
	}
	if res.Has("out") {
		t.Errorf("out unexpectedly set to %v", res.Value("out"))
	}
}

func TestParseOptionalPositional(t *testing.T) {
	reg := MustRegistry(
		NewPositional("first"),
		NewPositional("second", Optional(), WithDefault("two")),
	)
	res := mustParse(t, reg, "one")
	if got := res.String("first"); got != "one" {
		t.Errorf("first = %q, want %q", got, "one")
	}
	if got := res.String("second"); got != "two" {
		t.Errorf("second = %q, want %q", got, "two")
	}
	if res.Supplied("second") {
		t.Errorf("second reported as supplied")
	}
}

func TestParseOptionalPositionalWithoutDefault(t *testing.T) {
	reg := MustRegistry(NewPositional("name", Optional()))
	res := mustParse(t, reg)
	if res.Has("name") {
		t.Errorf("name = %v, want no entry", res.Value("name"))
	}
	if res.Len() != 0 {
		t.Errorf("Len() = %d, want 0", res.Len())
	}
}

func TestParseRestAfterPositionals(t *testing.T) {
	reg := MustRegistry(NewPositional("a"), NewPositional("b"), NewRest("rest"))
	res := mustParse(t, reg, "1", "2", "3", "4", "5")
	if res.String("a") != "1" || res.String("b") != "2" {
		t.Errorf("positionals = %q, %q", res.String("a"), res.String("b"))
	}
	if got, want := res.Strings("rest"), []string{"3", "4", "5"}; !reflect.DeepEqual(got, want) {
		t.Errorf("rest = %q, want %q", got, want)
	}
}

func TestParseRestInterleavedWithOptions(t *testing.T) {
	reg := MustRegistry(NewPositional("cmd"), NewFlag("all", "all", "a"), NewRest("args"))
	res := mustParse(t, reg, "ls", "x", "-a", "y")
	if got, want := res.Strings("args"), []string{"x", "y"}; !reflect.DeepEqual(got, want) {
		t.Errorf("args = %q, want %q", got, want)
	}
	if !res.Bool("all") {
		t.Errorf("all = false, want true")
	}
}

func TestParseEndOfOptions(t *testing.T) {
	reg := MustRegistry(NewFlag("verbose", "verbose", "v"), NewRest("args"))
	res := mustParse(t, reg, "-v", "--", "--verbose", "-x", "--")
	if got, want := res.Strings("args"), []string{"--verbose", "-x", "--"}; !reflect.DeepEqual(got, want) {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestParseNegativeNumbers(t *testing.T) {
	reg := MustRegistry(NewPositional("n"), NewFlag("one", "", "1"), NewRest("rest"))

	res := mustParse(t, reg, "-5", "-3.14", "-1")
	if got := res.String("n"); got != "-5" {
		t.Errorf("n = %q, want %q", got, "-5")
	}
	if got, want := res.Strings("rest"), []string{"-3.14"}; !reflect.DeepEqual(got, want) {
		t.Errorf("rest = %q, want %q", got, want)
	}
	if !res.Bool("one") {
		t.Errorf("-1 should match the short key 1")
	}
}

func TestParseUnknownOption(t *testing.T) {
	reg := exampleRegistry(t)

	for _, tok := range []string{"--bogus", "-x", "--bogus=1", "--Verbose", "--="} {
		t.Run(tok, func(t *testing.T) {
			errs := parseErrors(t, reg, "in.txt", tok)
			if len(errs) != 1 {
				t.Fatalf("got %d errors (%v), want 1", len(errs), errs)
			}
			if errs[0].Kind != UnknownArgument || errs[0].Subject != tok {
				t.Errorf("error = %+v, want UnknownArgument for %q", errs[0], tok)
			}
		})
	}
}

func TestParseBundledShortFlagsUnsupported(t *testing.T) {
	reg := MustRegistry(NewFlag("a", "", "a"), NewFlag("b", "", "b"))
	errs := parseErrors(t, reg, "-ab")
	if got := errorKinds(errs); !reflect.DeepEqual(got, []ErrorKind{UnknownArgument}) {
		t.Fatalf("kinds = %v, want [UnknownArgument]", got)
	}
}

func TestParseTooManyPositionals(t *testing.T) {
	reg := MustRegistry(NewPositional("only"))
	errs := parseErrors(t, reg, "a", "b", "c")
	if got := errorKinds(errs); !reflect.DeepEqual(got, []ErrorKind{UnknownArgument, UnknownArgument}) {
		t.Fatalf("kinds = %v, want two UnknownArgument", got)
	}
	if errs[0].Subject != "b" || errs[1].Subject != "c" {
		t.Errorf("subjects = %q, %q", errs[0].Subject, errs[1].Subject)
	}
}

func TestParseMissingMandatory(t *testing.T) {
	reg := MustRegistry(
		NewPositional("src"),
		NewPositional("dst"),
		NewKeyword("mode", "mode", "", Required()),
		NewKeyword("level", "level", "", Required(), WithDefault("3")),
	)
	errs := parseErrors(t, reg, "a")
	want := []ErrorKind{MissingMandatoryArgument, MissingMandatoryArgument}
	if got := errorKinds(errs); !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	if errs[0].Subject != "dst" || errs[1].Subject != "mode" {
		t.Errorf("subjects = %q, %q; want dst, mode", errs[0].Subject, errs[1].Subject)
	}
}

func TestParseRequiredPositionalWithDefault(t *testing.T) {
	reg := MustRegistry(NewPositional("src", WithDefault("-")))
	res := mustParse(t, reg)
	if got := res.String("src"); got != "-" {
		t.Errorf("src = %q, want %q", got, "-")
	}
}

func TestParseCollectsAllErrors(t *testing.T) {
	reg := MustRegistry(
		NewPositional("src"),
		NewKeyword("count", "count", "n", WithTransformHandler("int")),
		NewKeyword("name", "name", ""),
	)
	errs := parseErrors(t, reg, "--bogus", "-n", "ten", "--name")
	want := []ErrorKind{UnknownArgument, ValidationFailed, MissingRequiredValue, MissingMandatoryArgument}
	if got := errorKinds(errs); !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	if !errors.Is(errs, ErrValidationFailed) || !errors.Is(errs, ErrUnknownArgument) {
		t.Errorf("errors.Is does not see the collected kinds")
	}
	if errors.Is(errs, ErrDuplicateKeyword) {
		t.Errorf("errors.Is(ErrDuplicateKeyword) = true, want false")
	}
}

func TestParseTransformThenRange(t *testing.T) {
	reg := MustRegistry(
		NewKeyword("port", "port", "p", WithTransformHandler("int"), WithRule(Check(Range(1, 1024)))),
	)

	res := mustParse(t, reg, "--port", "80")
	if got, ok := Lookup[int](res, "port"); !ok || got != 80 {
		t.Errorf("port = %v, want 80", res.Value("port"))
	}

	errs := parseErrors(t, reg, "--port", "8080")
	if len(errs) != 1 || errs[0].Kind != ValidationFailed {
		t.Fatalf("errs = %v, want one ValidationFailed", errs)
	}
}

func TestParseTransformSeesEarlierValues(t *testing.T) {
	join := func(v any, _ *Definition, partial Values) (any, error) {
		dir, _ := partial["dir"].(string)
		return dir + "/" + v.(string), nil
	}
	reg := MustRegistry(
		NewPositional("dir"),
		NewPositional("file", WithTransform(join)),
	)
	res := mustParse(t, reg, "/tmp", "x.txt")
	if got := res.String("file"); got != "/tmp/x.txt" {
		t.Errorf("file = %q, want %q", got, "/tmp/x.txt")
	}
}

func TestParseRestTransformAndValidation(t *testing.T) {
	reg := MustRegistry(
		NewRest("nums", WithTransformHandler("int"), WithRule(Check(Range(0, 9)))),
	)
	res := mustParse(t, reg, "1", "2", "3")
	if got, want := res.Value("nums"), []int{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("nums = %#v, want %#v", got, want)
	}

	errs := parseErrors(t, reg, "1", "20")
	if len(errs) != 1 || errs[0].Kind != ValidationFailed || errs[0].Subject != "nums" {
		t.Fatalf("errs = %v, want one ValidationFailed for nums", errs)
	}
}

func TestParseString(t *testing.T) {
	reg := exampleRegistry(t)
	res, err := ParseString(reg, `"in file.txt" -o 'out dir/a.bin' --verbose x`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if got := res.String("src"); got != "in file.txt" {
		t.Errorf("src = %q", got)
	}
	if got := res.String("out"); got != "out dir/a.bin" {
		t.Errorf("out = %q", got)
	}

	if _, err := ParseString(reg, `in.txt "unterminated`); err == nil {
		t.Errorf("ParseString() with unterminated quote succeeded")
	}
}

func TestParseStringKeepsHashWords(t *testing.T) {
	reg := MustRegistry(
		NewKeyword("color", "color", "c"),
		NewRest("rest"),
	)
	for _, line := range []string{`--color #fff`, `--color "#fff"`, `-c '#fff'`} {
		res, err := ParseString(reg, line+" # tail")
		if err != nil {
			t.Fatalf("ParseString(%q) error = %v", line, err)
		}
		if got := res.String("color"); got != "#fff" {
			t.Errorf("ParseString(%q) color = %q, want %q", line, got, "#fff")
		}
		if got, want := res.Strings("rest"), []string{"#", "tail"}; !reflect.DeepEqual(got, want) {
			t.Errorf("ParseString(%q) rest = %q, want %q", line, got, want)
		}
	}
}

func TestParseDefaultsAreCopied(t *testing.T) {
	reg := MustRegistry(
		NewRest("extra", WithDefault([]string{"a"})),
		NewKeyword("env", "env", "", WithDefault(map[string]string{"k": "v"})),
	)

	first := mustParse(t, reg)
	first.Value("extra").([]string)[0] = "changed"
	first.Value("env").(map[string]string)["k"] = "changed"

	second := mustParse(t, reg)
	if got, want := second.Strings("extra"), []string{"a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("extra = %q after mutating an earlier result, want %q", got, want)
	}
	if got := second.Value("env").(map[string]string)["k"]; got != "v" {
		t.Errorf("env[k] = %q after mutating an earlier result, want %q", got, "v")
	}
	def, _ := reg.Lookup("extra")
	if got := def.Default.([]string)[0]; got != "a" {
		t.Errorf("registry default = %q, want %q", got, "a")
	}
}

func TestParseBareKeyValueUsesLongKeysOnly(t *testing.T) {
	reg := MustRegistry(
		NewKeyword("out", "out", "o"),
		NewRest("rest"),
	)
	res := mustParse(t, reg, "out=x", "o=y")
	if got := res.String("out"); got != "x" {
		t.Errorf("out = %q, want %q", got, "x")
	}
	if got, want := res.Strings("rest"), []string{"o=y"}; !reflect.DeepEqual(got, want) {
		t.Errorf("rest = %q, want %q", got, want)
	}
}

func TestParseDeterministic(t *testing.T) {
	reg := exampleRegistry(t)
	tokens := []string{"in.txt", "--out=o", "--verbose", "a", "b", "c"}
	first := mustParse(t, reg, tokens...)
	for i := 0; i < 20; i++ {
		again := mustParse(t, reg, tokens...)
		if diff := cmp.Diff(first.Map(), again.Map()); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestParseConcurrentSharedRegistry(t *testing.T) {
	reg := MustRegistry(
		NewPositional("n", WithTransformHandler("int")),
		NewFlag("verbose", "verbose", "v"),
	)
	p := &Parser{Registry: reg}

	var wg sync.WaitGroup
	errc := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := p.Parse([]string{strconv.Itoa(i), "-v"})
			if err != nil {
				errc <- err
				return
			}
			if got, _ := Lookup[int](res, "n"); got != i {
				errc <- fmt.Errorf("n = %d, want %d", got, i)
			}
		}(i)
	}
	wg.Wait()
	close(errc)
	for err := range errc {
		t.Error(err)
	}
}

func TestParserLogf(t *testing.T) {
	var lines []string
	p := &Parser{
		Registry: exampleRegistry(t),
		Logf: func(format string, args ...any) {
			lines = append(lines, fmt.Sprintf(format, args...))
		},
	}
	if _, err := p.Parse([]string{"in.txt", "-o", "x", "y"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	trace := strings.Join(lines, "\n")
	for _, want := range []string{`"in.txt" fills positional src`, `"-o" takes value "x"`, `"y" appended to extra`} {
		if !strings.Contains(trace, want) {
			t.Errorf("trace missing %q:\n%s", want, trace)
		}
	}
}

func TestParseNilRegistry(t *testing.T) {
	p := &Parser{}
	res, err := p.Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if res.Len() != 0 {
		t.Errorf("Len() = %d, want 0", res.Len())
	}
	if _, err := p.Parse([]string{"x"}); !errors.Is(err, ErrUnknownArgument) {
		t.Errorf("Parse(x) error = %v, want unknown argument", err)
	}
}

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"10", true},
		{"-10", true},
		{"+3", true},
		{"-3.14", true},
		{".5", true},
		{"-", false},
		{"-.", false},
		{"1.2.3", false},
		{"-v", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isNumeric(tt.in); got != tt.want {
			t.Errorf("isNumeric(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
