// Package theme holds the light and dark palettes and the process-wide
// choice between them.
package theme

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Mode selects a palette.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode accepts "light" or "dark" in any case.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

// Palette is a set of hex colors.
type Palette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Error      string `json:"error"`
}

var (
	LightPalette = Palette{
		Primary:    "#6200EE",
		Secondary:  "#03DAC6",
		Background: "#F0EAD6",
		Surface:    "#FFFFFF",
		Error:      "#B00020",
	}
	DarkPalette = Palette{
		Primary:    "#BB86FC",
		Secondary:  "#03DAC6",
		Background: "#121212",
		Surface:    "#1E1E1E",
		Error:      "#CF6679",
	}
)

// PaletteFor returns the palette of m. Unknown modes get the light palette.
func PaletteFor(m Mode) Palette {
	if m == Dark {
		return DarkPalette
	}
	return LightPalette
}

// Context is the shared theme state. Safe for concurrent use.
type Context struct {
	mu   sync.RWMutex
	mode Mode
}

// New returns a Context in light mode. Call Initialize before use.
func New() *Context {
	return &Context{mode: Light}
}

// Initialize applies the saved preference, if any.
func (c *Context) Initialize(saved string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := ParseMode(saved); ok {
		c.mode = m
	}
}

// Close releases nothing; it exists so callers can treat both contexts alike.
func (c *Context) Close() error { return nil }

func (c *Context) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

func (c *Context) IsDark() bool { return c.Mode() == Dark }

// Toggle flips between light and dark and returns the new mode.
func (c *Context) Toggle() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == Dark {
		c.mode = Light
	} else {
		c.mode = Dark
	}
	return c.mode
}

func (c *Context) Palette() Palette { return PaletteFor(c.Mode()) }

// Paint wraps text in a 24-bit ANSI foreground color. Malformed colors
// return text unchanged.
func Paint(hex, text string) string {
	r, g, b, ok := rgb(hex)
	if !ok {
		return text
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", r, g, b, text)
}

func rgb(hex string) (r, g, b uint8, ok bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}
