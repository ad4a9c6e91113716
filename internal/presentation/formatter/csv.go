package formatter

import (
	"encoding/csv"
	"io"

	"github.com/penwyp/go-offset-monitor/internal/core/model"
	"github.com/penwyp/go-offset-monitor/internal/presentation/style"
)

type CSVFormatter struct {
	out io.Writer
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{out: w}
}

// Format writes the header and one record per target. Missing cells are
// written as N/A.
func (f *CSVFormatter) Format(m model.Matrix) error {
	w := csv.NewWriter(f.out)

	if err := w.Write(m.Header); err != nil {
		return err
	}
	for _, row := range m.Rows {
		record := make([]string, 0, len(row.Cells)+1)
		record = append(record, row.Target)
		for _, cell := range row.Cells {
			record = append(record, style.CellText(cell))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
