// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestColorizerDisabled(t *testing.T) {
	c := NewColorizer(false, os.Stdout)
	if got := c.Red("x"); got != "x" {
		t.Errorf("Red() = %q, want plain text", got)
	}
}

func TestColorizerNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("TERM", "xterm")
	if c := NewColorizer(true, os.Stdout); c.Enabled {
		t.Errorf("NO_COLOR should disable colour")
	}
}

func TestColorizerDumbTerm(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "dumb")
	if c := NewColorizer(true, os.Stdout); c.Enabled {
		t.Errorf("TERM=dumb should disable colour")
	}
}

func TestColorizerNotTerminal(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "xterm")
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if c := NewColorizer(true, f); c.Enabled {
		t.Errorf("a regular file should disable colour")
	}
}

func TestColorizerWrap(t *testing.T) {
	c := Colorizer{Enabled: true}
	tests := []struct {
		name  string
		attrs []color.Attribute
		pre   string
	}{
		{"red", []color.Attribute{color.FgRed}, "\x1b[31m"},
		{"red bold", []color.Attribute{color.FgRed, color.Bold}, "\x1b[31;1m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := color.New(tt.attrs...)
			want.EnableColor()
			got := c.Wrap("err", tt.attrs...)
			if got != want.Sprint("err") {
				t.Errorf("Wrap() = %q, want %q", got, want.Sprint("err"))
			}
			if !strings.HasPrefix(got, tt.pre+"err\x1b[") {
				t.Errorf("Wrap() = %q, want prefix %q", got, tt.pre+"err")
			}
		})
	}
	if got := c.Wrap("x"); got != "x" {
		t.Errorf("Wrap() without attributes = %q", got)
	}
}

func TestColorizerRed(t *testing.T) {
	if got := (Colorizer{Enabled: true}).Red("error:"); got != "\x1b[31merror:\x1b[0m" {
		t.Errorf("Red() = %q", got)
	}
	if got := (Colorizer{}).Red("error:"); got != "error:" {
		t.Errorf("disabled Red() = %q", got)
	}
}
