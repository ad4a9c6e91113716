package display

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/penwyp/go-offset-monitor/internal/core/model"
	"github.com/penwyp/go-offset-monitor/internal/presentation/formatter"
	"github.com/penwyp/go-offset-monitor/internal/presentation/layout"
	"github.com/penwyp/go-offset-monitor/internal/presentation/style"
	"github.com/penwyp/go-offset-monitor/internal/util"
)

const title = "Offset Monitor"

// Status describes the cycle that produced a matrix
type Status struct {
	Cycle    int
	At       time.Time
	Interval time.Duration
	Elapsed  time.Duration
	Failed   []string
	Tracked  int
}

type DisplayConfig struct {
	Out    io.Writer
	Colors bool
	Sizer  *layout.Sizer
	// KeyHints adds the keyboard help line
	KeyHints bool
}

type TerminalDisplay struct {
	out               io.Writer
	colors            bool
	sizer             *layout.Sizer
	keyHints          bool
	inAlternateScreen bool
}

func NewTerminalDisplay(config DisplayConfig) *TerminalDisplay {
	td := &TerminalDisplay{
		out:      config.Out,
		colors:   config.Colors,
		sizer:    config.Sizer,
		keyHints: config.KeyHints,
	}
	if td.out == nil {
		td.out = os.Stdout
	}
	if td.sizer == nil {
		td.sizer = layout.FixedSizer(layout.DefaultWidth)
	}
	return td
}

// EnterAlternateScreen switches to the alternate screen buffer
func (td *TerminalDisplay) EnterAlternateScreen() {
	if td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.EnterAltScreen+util.ClearScreen+util.MoveCursorHome+
		util.ClearScrollback+util.ResetScrollRegion+util.HideCursor)
	td.inAlternateScreen = true
}

// ExitAlternateScreen returns to the normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.ClearScreen+util.MoveCursorHome+util.ShowCursor+util.ExitAltScreen)
	td.inAlternateScreen = false
}

// InAlternateScreen reports whether the alternate buffer is active
func (td *TerminalDisplay) InAlternateScreen() bool {
	return td.inAlternateScreen
}

// Render repaints the whole screen with one matrix. The frame is assembled
// in memory and written at once.
func (td *TerminalDisplay) Render(m model.Matrix, status Status) error {
	var buf bytes.Buffer
	width := td.sizer.Width()

	buf.WriteString(util.MoveCursorHome + util.ClearScreen)
	buf.WriteString(td.headerLine(status, width))
	buf.WriteString("\n\n")

	if err := formatter.NewTableFormatter(&buf, td.colors).Format(m); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	if len(m.Rows) == 0 {
		buf.WriteString(style.Lookup(model.Aging).Apply("no targets reported yet", td.colors))
		buf.WriteString("\n")
	}

	buf.WriteString("\n")
	if line := td.failedLine(status, width); line != "" {
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	buf.WriteString(style.Legend(td.colors))
	buf.WriteString("\n")
	if td.keyHints {
		buf.WriteString(td.sizer.Columns(width, "q quit", "r refresh now"))
		buf.WriteString("\n")
	}

	_, err := td.out.Write(buf.Bytes())
	return err
}

func (td *TerminalDisplay) headerLine(status Status, width int) string {
	parts := []string{title}
	if !status.At.IsZero() {
		parts = append(parts, "updated "+status.At.Format("15:04:05"))
	}
	if status.Interval > 0 {
		parts = append(parts, "every "+status.Interval.String())
	}
	if status.Cycle > 0 {
		parts = append(parts, fmt.Sprintf("cycle %d (%s)", status.Cycle, status.Elapsed.Round(time.Millisecond)))
	}
	if status.Tracked > 0 {
		parts = append(parts, fmt.Sprintf("%d tracked", status.Tracked))
	}

	line := td.sizer.Columns(width, parts...)
	return style.Title.Apply(line, td.colors)
}

func (td *TerminalDisplay) failedLine(status Status, width int) string {
	if len(status.Failed) == 0 {
		return ""
	}
	text := "unreachable: " + strings.Join(status.Failed, ", ")
	if util.GetDisplayWidth(text) > width {
		text = util.Truncate(text, width)
	}
	return style.Lookup(model.Missing).Apply(text, td.colors)
}
