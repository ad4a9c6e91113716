package formatter

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/penwyp/go-offset-monitor/internal/core/model"
	"github.com/penwyp/go-offset-monitor/internal/presentation/style"
)

// TableFormatter draws the matrix as a bordered grid with a line between
// every row
type TableFormatter struct {
	out    io.Writer
	colors bool
}

func NewTableFormatter(w io.Writer, colors bool) *TableFormatter {
	return &TableFormatter{out: w, colors: colors}
}

func (f *TableFormatter) Format(m model.Matrix) error {
	table := tablewriter.NewTable(f.out,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{PerColumn: columnAlignment(len(m.Header))},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenRows: tw.On},
			},
		}),
	)

	table.Header(m.Header)
	if len(m.Rows) > 0 {
		if err := table.Bulk(f.records(m)); err != nil {
			return err
		}
	}
	return table.Render()
}

func (f *TableFormatter) records(m model.Matrix) [][]string {
	records := make([][]string, 0, len(m.Rows))
	for _, row := range m.Rows {
		record := make([]string, 0, len(row.Cells)+1)
		record = append(record, row.Target)
		for _, cell := range row.Cells {
			record = append(record, style.Cell(cell, f.colors))
		}
		records = append(records, record)
	}
	return records
}

// target left, offsets right
func columnAlignment(columns int) []tw.Align {
	if columns == 0 {
		return nil
	}
	align := make([]tw.Align, columns)
	align[0] = tw.AlignLeft
	for i := 1; i < columns; i++ {
		align[i] = tw.AlignRight
	}
	return align
}
