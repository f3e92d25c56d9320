// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Colorizer wraps text in terminal colours when enabled.
type Colorizer struct {
	Enabled bool
}

// NewColorizer returns a Colorizer for f. Colour is off when enabled is
// false, NO_COLOR is set, TERM is empty or "dumb", or f is not a terminal.
func NewColorizer(enabled bool, f *os.File) Colorizer {
	if !enabled {
		return Colorizer{}
	}
	if os.Getenv("NO_COLOR") != "" {
		return Colorizer{}
	}
	if t := os.Getenv("TERM"); t == "" || t == "dumb" {
		return Colorizer{}
	}
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return Colorizer{}
	}
	return Colorizer{Enabled: true}
}

// Wrap applies attrs to text.
func (c Colorizer) Wrap(text string, attrs ...color.Attribute) string {
	if !c.Enabled || len(attrs) == 0 {
		return text
	}
	col := color.New(attrs...)
	col.EnableColor()
	return col.Sprint(text)
}

// Red wraps text in red, the colour of error labels.
func (c Colorizer) Red(text string) string { return c.Wrap(text, color.FgRed) }
