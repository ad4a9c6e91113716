package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Terminal control sequences
const (
	ClearScreen       = "\033[2J"     // Clear entire screen
	ClearScrollback   = "\033[3J"     // Clear scrollback buffer
	ClearToEnd        = "\033[J"      // Clear from cursor to end of screen
	MoveCursorHome    = "\033[H"      // Move cursor to home position
	HideCursor        = "\033[?25l"   // Hide cursor
	ShowCursor        = "\033[?25h"   // Show cursor
	EnterAltScreen    = "\033[?1049h" // Switch to alternate screen buffer
	ExitAltScreen     = "\033[?1049l" // Return to normal screen buffer
	ResetScrollRegion = "\033[r"      // Reset scroll region
)

// GetDisplayWidth calculates the display width of a string, accounting for wide runes
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadRight pads s with spaces up to width display columns
func PadRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// Truncate shortens s to at most width display columns, marking the cut with "…"
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
