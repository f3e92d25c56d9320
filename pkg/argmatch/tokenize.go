// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argmatch

import "github.com/kballard/go-shellquote"

// Tokenize splits line into words the way /bin/sh would: on unquoted
// whitespace, with single and double quotes grouping words and being
// stripped, and backslash escaping the next character. No word is
// dropped; '#' has no special meaning and no expansion is performed.
//
// It returns an error for an unterminated quote or trailing escape.
func Tokenize(line string) ([]string, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if words == nil {
		words = []string{}
	}
	return words, nil
}
