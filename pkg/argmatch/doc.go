// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package argmatch matches a sequence of command-line tokens against a
// registry of declared arguments and produces a validated, typed result.
//
// Four kinds of argument are supported:
//   - Positional: matched by position among plain tokens
//   - Keyword: a value after --long or -s (or --long=value, long:value)
//   - Flag: a boolean set by the presence of --long or -s
//   - Rest: every plain token left once the positionals are filled
//
// # Basic Usage
//
//	reg := argmatch.MustRegistry(
//	    argmatch.NewPositional("src"),
//	    argmatch.NewKeyword("out", "out", "o", argmatch.WithDefault("a.out")),
//	    argmatch.NewFlag("verbose", "verbose", "v"),
//	    argmatch.NewRest("extra"),
//	)
//
//	res, err := argmatch.Parse(reg, os.Args[1:])
//	if err != nil {
//	    var errs argmatch.Errors
//	    if errors.As(err, &errs) {
//	        for _, e := range errs {
//	            fmt.Fprintln(os.Stderr, e)
//	        }
//	    }
//	    os.Exit(1)
//	}
//	fmt.Println(res.String("src"), res.String("out"), res.Bool("verbose"))
//
// # Matching Rules
//
// Tokens are read once, left to right:
//   - "--" ends option processing; every later token is plain
//   - "--name" and "-n" are looked up by exact, case-sensitive key. A short
//     key is one letter or digit; "-ab" is not two flags and is reported
//     as an unknown argument
//   - a bare "name=value" or "name:value" is an option only when name is a
//     registered long key; "o=x" stays plain even if "o" is a short key
//   - a Keyword takes its inline value, else the next token unless that
//     token is itself option-like, else its value-optional sentinel. A
//     string sentinel is validated like any other value
//   - a token such as "-5" is a plain value unless "5" is a short key
//   - plain tokens fill positionals in declared order, then go to the Rest
//     argument, and are otherwise unknown
//
// Parsing never stops at the first problem. Parse collects every error it
// can detect and returns them together as Errors; each *ParseError
// matches its kind's sentinel (ErrUnknownArgument and so on) under
// errors.Is.
//
// # Validation
//
// A matched value is first passed to the definition's transform, then
// checked by its Rule: an enumerated set (OneOf), a pattern on the raw
// string (MustMatch), or a predicate (Check). Transforms and predicates
// can be shared by name through Handlers; DefaultHandlers provides int,
// float, duration, url, port, semver, uuid and others.
package argmatch
