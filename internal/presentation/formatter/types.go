package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-offset-monitor/internal/core/model"
)

// Kind names an output format
type Kind string

const (
	KindTable Kind = "table"
	KindJSON  Kind = "json"
	KindCSV   Kind = "csv"
)

// Kinds lists the supported output formats
func Kinds() []Kind {
	return []Kind{KindTable, KindJSON, KindCSV}
}

// ParseKind parses an output format name
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (valid: table, json, csv)", s)
}

// Formatter writes a matrix in one output format
type Formatter interface {
	Format(m model.Matrix) error
}

// NewFormatter creates a formatter writing to w. colors only affects tables.
func NewFormatter(kind Kind, w io.Writer, colors bool) (Formatter, error) {
	switch kind {
	case KindTable:
		return NewTableFormatter(w, colors), nil
	case KindJSON:
		return NewJSONFormatter(w), nil
	case KindCSV:
		return NewCSVFormatter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", kind)
	}
}
