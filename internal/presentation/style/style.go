// Package style maps freshness tiers to terminal text styles.
package style

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/penwyp/go-offset-monitor/internal/core/model"
)

// MissingText is shown in cells that have no value
const MissingText = "N/A"

// Style is the visual treatment of one tier
type Style struct {
	Name  string
	Attrs []color.Attribute
}

var styles = map[model.FreshnessTier]Style{
	model.JustChanged:      {Name: "just changed", Attrs: []color.Attribute{color.Bold, color.FgRed}},
	model.Recent:           {Name: "recent", Attrs: []color.Attribute{color.Faint, color.FgRed}},
	model.Aging:            {Name: "aging", Attrs: []color.Attribute{color.FgHiBlack}},
	model.Idle:             {Name: "idle"},
	model.UnknownFirstSeen: {Name: "first seen", Attrs: []color.Attribute{color.Italic}},
	model.Missing:          {Name: "missing", Attrs: []color.Attribute{color.FgYellow}},
}

// Title is used for the dashboard heading
var Title = Style{Name: "title", Attrs: []color.Attribute{color.Bold}}

// Lookup returns the style for a tier. Unknown tiers render unstyled.
func Lookup(tier model.FreshnessTier) Style {
	if s, ok := styles[tier]; ok {
		return s
	}
	return Style{Name: strings.ToLower(tier.String())}
}

// Plain reports whether the style leaves text untouched
func (s Style) Plain() bool {
	return len(s.Attrs) == 0
}

// Apply wraps text in the style's escape sequences when colors is true
func (s Style) Apply(text string, colors bool) string {
	if !colors || s.Plain() {
		return text
	}
	c := color.New(s.Attrs...)
	c.EnableColor()
	return c.Sprint(text)
}

// CellText is the unstyled text of a cell
func CellText(cell model.Cell) string {
	if cell.Tier == model.Missing || !cell.HasValue {
		return MissingText
	}
	return strconv.FormatInt(cell.Value, 10)
}

// Cell renders a cell with its tier's style
func Cell(cell model.Cell, colors bool) string {
	return Lookup(cell.Tier).Apply(CellText(cell), colors)
}

// Legend lists every tier in its own style
func Legend(colors bool) string {
	parts := make([]string, 0, len(model.AllTiers()))
	for _, tier := range model.AllTiers() {
		s := Lookup(tier)
		parts = append(parts, s.Apply(s.Name, colors))
	}
	return strings.Join(parts, "  ")
}

// ColorMode selects when styles are emitted
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode parses auto, always or never
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// ResolveColors decides whether to emit styles. In auto mode NO_COLOR and
// TERM=dumb disable colors, otherwise they follow whether output is a tty.
func ResolveColors(mode ColorMode, tty bool) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return tty
}
