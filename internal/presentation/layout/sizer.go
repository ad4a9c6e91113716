package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/penwyp/go-offset-monitor/internal/util"
	"golang.org/x/term"
)

const (
	DefaultWidth = 80
	minWidth     = 20
)

// Sizer reports the usable width of the terminal behind a file descriptor
type Sizer struct {
	fd       int
	override int
}

// NewSizer sizes the terminal on fd
func NewSizer(fd int) *Sizer {
	return &Sizer{fd: fd}
}

// FixedSizer always reports width. Used when output is not a terminal.
func FixedSizer(width int) *Sizer {
	return &Sizer{fd: -1, override: width}
}

// Width returns the terminal width, falling back to DefaultWidth
func (s *Sizer) Width() int {
	if s.override > 0 {
		return s.override
	}
	w, _, err := term.GetSize(s.fd)
	if err != nil || w < minWidth {
		util.LogDebugf("terminal size unavailable (width=%d, err=%v), using %d", w, err, DefaultWidth)
		return DefaultWidth
	}
	return w
}

// Fit pads or truncates s to exactly width display columns
func (s *Sizer) Fit(text string, width int) string {
	if runewidth.StringWidth(text) > width {
		return util.Truncate(text, width)
	}
	return util.PadRight(text, width)
}

// Columns lays out labelled parts on one line separated by two spaces,
// dropping trailing parts that would not fit in width
func (s *Sizer) Columns(width int, parts ...string) string {
	var b strings.Builder
	used := 0
	for _, p := range parts {
		if p == "" {
			continue
		}
		w := runewidth.StringWidth(p)
		sep := 0
		if used > 0 {
			sep = 2
		}
		if used+sep+w > width {
			break
		}
		if sep > 0 {
			b.WriteString("  ")
		}
		b.WriteString(p)
		used += sep + w
	}
	return b.String()
}
