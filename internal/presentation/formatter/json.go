package formatter

import (
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-offset-monitor/internal/core/model"
)

type JSONFormatter struct {
	out io.Writer
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{out: w}
}

type jsonCell struct {
	Tier  string `json:"tier"`
	Value *int64 `json:"value"`
}

type jsonRow struct {
	Target string              `json:"target"`
	Cells  map[string]jsonCell `json:"cells"`
}

type jsonMatrix struct {
	GeneratedAt time.Time `json:"generated_at"`
	Sources     []string  `json:"sources"`
	Rows        []jsonRow `json:"rows"`
}

// Format writes one JSON document. Missing cells carry a null value.
func (f *JSONFormatter) Format(m model.Matrix) error {
	doc := jsonMatrix{
		GeneratedAt: m.GeneratedAt,
		Sources:     m.Sources(),
		Rows:        make([]jsonRow, 0, len(m.Rows)),
	}
	if doc.Sources == nil {
		doc.Sources = []string{}
	}

	for _, row := range m.Rows {
		jr := jsonRow{Target: row.Target, Cells: make(map[string]jsonCell, len(row.Cells))}
		for i, cell := range row.Cells {
			if i >= len(doc.Sources) {
				break
			}
			jc := jsonCell{Tier: cell.Tier.String()}
			if cell.HasValue && cell.Tier != model.Missing {
				v := cell.Value
				jc.Value = &v
			}
			jr.Cells[doc.Sources[i]] = jc
		}
		doc.Rows = append(doc.Rows, jr)
	}

	data, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = f.out.Write(data)
	return err
}
