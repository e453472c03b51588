// Package components holds the terminal widgets shared by the darknet views:
// panels, key/value listings and the key bar.
package components

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Printable drops escape sequences, bidi overrides and control characters
// from page text. Newlines and tabs survive.
func Printable(s string) string {
	if s == "" {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case unicode.Is(unicode.Bidi_Control, r), unicode.IsControl(r):
			return -1
		}
		return r
	}, ansi.Strip(s))
}

// OneLine is Printable with all whitespace runs folded into single spaces.
func OneLine(s string) string {
	return strings.Join(strings.Fields(Printable(s)), " ")
}

// Fit flattens s to one line and cuts it to width cells, marking the cut
// with an ellipsis. A non-positive width leaves s untouched.
func Fit(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(OneLine(s), width, "…")
}
