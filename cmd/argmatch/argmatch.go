// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command argmatch parses command-line tokens against a definition file
// and prints the resolved values.
//
//	argmatch --defs defs.yaml -- in.txt -o out.bin --verbose x y
//	argmatch --defs defs.toml --line 'in.txt --out "a b"' --format yaml
//	argmatch --defs defs.yaml --batch lines.txt
//
// Flags of argmatch itself are recognised anywhere before "--"; put the
// tokens to parse after "--" when they could be mistaken for them. Values
// that start with a dash need the --flag=value form, as in --batch=- to
// read lines from stdin.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shayne/yargs"
	"github.com/yeetrun/argmatch/pkg/argfile"
	"github.com/yeetrun/argmatch/pkg/argmatch"
	"github.com/yeetrun/argmatch/pkg/tui"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const defaultFormat = "json"

// errReported means the failure was already written to stderr.
var errReported = errors.New("reported")

type flagsParsed struct {
	Defs    string `flag:"defs" short:"d" help:"Argument definition file (.yaml, .yml or .toml)"`
	Format  string `flag:"format" short:"f" help:"Output format: json, yaml or toml (ARGMATCH_FORMAT)"`
	Line    string `flag:"line" short:"l" help:"Parse a single shell-quoted line"`
	Batch   string `flag:"batch" short:"b" help:"Parse every line of a file (--batch=- for stdin)"`
	Verbose bool   `flag:"verbose" short:"v" help:"Trace how tokens are matched"`
	NoColor bool   `flag:"no-color" help:"Disable coloured output"`
}

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string) (flagsParsed, []string, error) {
	result, err := yargs.ParseKnownFlags[flagsParsed](args, yargs.KnownFlagsOptions{})
	if err != nil {
		return flagsParsed{}, nil, err
	}
	rest := result.RemainingArgs
	if len(rest) > 0 && rest[0] == "--" {
		rest = rest[1:]
	}
	return result.Flags, rest, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags, tokens, err := parseFlags(args)
	if err != nil {
		return err
	}
	if flags.Defs == "" {
		return errors.New("--defs is required")
	}
	format := flags.Format
	if format == "" {
		format = os.Getenv("ARGMATCH_FORMAT")
	}
	if format == "" {
		format = defaultFormat
	}
	switch format {
	case "json", "yaml", "toml":
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or toml)", format)
	}
	if flags.Line != "" && flags.Batch != "" {
		return errors.New("--line and --batch cannot be combined")
	}

	reg, err := argfile.LoadFile(flags.Defs)
	if err != nil {
		return err
	}
	p := &argmatch.Parser{Registry: reg}
	if flags.Verbose {
		p.Logf = log.Printf
	}

	var colors tui.Colorizer
	if f, ok := stderr.(*os.File); ok {
		colors = tui.NewColorizer(!flags.NoColor, f)
	}

	if flags.Batch != "" {
		return runBatch(p, flags.Batch, stdin, stdout, format)
	}

	var res *argmatch.Result
	if flags.Line != "" {
		res, err = p.ParseString(flags.Line)
	} else {
		res, err = p.Parse(tokens)
	}
	if err != nil {
		var errs argmatch.Errors
		if !errors.As(err, &errs) {
			return err
		}
		for _, e := range errs {
			fmt.Fprintf(stderr, "%s %s\n", colors.Red("error:"), e.Error())
		}
		return errReported
	}
	return encode(stdout, format, newReport(res))
}

// report is the printed form of a Result.
type report struct {
	Values   map[string]any `json:"values" yaml:"values" toml:"values"`
	Supplied []string       `json:"supplied" yaml:"supplied" toml:"supplied"`
}

func newReport(res *argmatch.Result) *report {
	r := &report{Values: make(map[string]any, res.Len()), Supplied: []string{}}
	for _, id := range res.Idents() {
		r.Values[id] = printable(res.Value(id))
		if res.Supplied(id) {
			r.Supplied = append(r.Supplied, id)
		}
	}
	return r
}

// printable reduces v to types every output encoder handles.
func printable(v any) any {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = printable(rv.Index(i).Interface())
		}
		return out
	}
	return fmt.Sprint(v)
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(w).Encode(v)
	default:
		j, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", j)
		return err
	}
}

type batchEntry struct {
	Line     int            `json:"line" yaml:"line" toml:"line"`
	Input    string         `json:"input" yaml:"input" toml:"input"`
	Values   map[string]any `json:"values,omitempty" yaml:"values,omitempty" toml:"values,omitempty"`
	Supplied []string       `json:"supplied,omitempty" yaml:"supplied,omitempty" toml:"supplied,omitempty"`
	Errors   []string       `json:"errors,omitempty" yaml:"errors,omitempty" toml:"errors,omitempty"`
}

type batchReport struct {
	Results []batchEntry `json:"results" yaml:"results" toml:"results"`
}

// runBatch parses every non-blank, non-comment line of path concurrently
// against p's registry and prints the outcomes in input order.
func runBatch(p *argmatch.Parser, path string, stdin io.Reader, stdout io.Writer, format string) error {
	in := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var entries []batchEntry
	sc := bufio.NewScanner(in)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if trimmed := strings.TrimSpace(line); trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		entries = append(entries, batchEntry{Line: n, Input: line})
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range entries {
		g.Go(func() error {
			e := &entries[i]
			res, err := p.ParseString(e.Input)
			if err != nil {
				var errs argmatch.Errors
				if !errors.As(err, &errs) {
					e.Errors = []string{err.Error()}
					return nil
				}
				for _, pe := range errs {
					e.Errors = append(e.Errors, pe.Error())
				}
				return nil
			}
			r := newReport(res)
			e.Values = r.Values
			e.Supplied = r.Supplied
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := false
	for _, e := range entries {
		if len(e.Errors) > 0 {
			failed = true
		}
	}
	if entries == nil {
		entries = []batchEntry{}
	}
	if err := encode(stdout, format, batchReport{Results: entries}); err != nil {
		return err
	}
	if failed {
		return errReported
	}
	return nil
}
