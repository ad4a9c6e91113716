package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/penwyp/go-offset-monitor/internal/core/model"
)

func sampleMatrix() model.Matrix {
	return model.Matrix{
		Header:      []string{"target", "snode1", "anode1"},
		GeneratedAt: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		Rows: []model.Row{
			{Target: "http://v1", Cells: []model.Cell{
				{Tier: model.JustChanged, Value: 42, HasValue: true},
				{Tier: model.Missing},
			}},
			{Target: "http://v2", Cells: []model.Cell{
				{Tier: model.Idle, Value: 7, HasValue: true},
				{Tier: model.UnknownFirstSeen, Value: 0, HasValue: true},
			}},
		},
	}
}

func emptyMatrix() model.Matrix {
	return model.Matrix{Header: []string{"target", "snode1"}}
}

func TestParseKind(t *testing.T) {
	for _, in := range []string{"table", "JSON", " csv "} {
		if _, err := ParseKind(in); err != nil {
			t.Errorf("ParseKind(%q) returned error: %v", in, err)
		}
	}
	if _, err := ParseKind("yaml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestNewFormatter(t *testing.T) {
	var buf bytes.Buffer
	for _, kind := range Kinds() {
		f, err := NewFormatter(kind, &buf, false)
		if err != nil || f == nil {
			t.Fatalf("NewFormatter(%s) = %v, %v", kind, f, err)
		}
	}
	if _, err := NewFormatter(Kind("xml"), &buf, false); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestTableFormatterFormat(t *testing.T) {
	tests := []struct {
		name       string
		matrix     model.Matrix
		wantInBody []string
		minLines   int
	}{
		{
			name:       "grid_with_rows",
			matrix:     sampleMatrix(),
			wantInBody: []string{"target", "snode1", "anode1", "http://v1", "http://v2", "42", "7", "N/A"},
			minLines:   7,
		},
		{
			name:       "header_only",
			matrix:     emptyMatrix(),
			wantInBody: []string{"target", "snode1"},
			minLines:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewTableFormatter(&buf, false).Format(tt.matrix); err != nil {
				t.Fatalf("Format returned error: %v", err)
			}
			out := buf.String()
			for _, want := range tt.wantInBody {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			if strings.Contains(out, "\x1b[") {
				t.Error("plain table should not contain escape sequences")
			}
			if lines := strings.Count(out, "\n"); lines < tt.minLines {
				t.Errorf("expected at least %d lines, got %d:\n%s", tt.minLines, lines, out)
			}
		})
	}
}

func TestTableFormatterHeaderNotUppercased(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableFormatter(&buf, false).Format(sampleMatrix()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "TARGET") {
		t.Error("header should keep its original case")
	}
}

func TestTableFormatterColors(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableFormatter(&buf, true).Format(sampleMatrix()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[1;31m") {
		t.Errorf("expected bold red for the just changed cell:\n%q", buf.String())
	}
}

func TestJSONFormatterFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(&buf).Format(sampleMatrix()); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	var doc struct {
		GeneratedAt time.Time `json:"generated_at"`
		Sources     []string  `json:"sources"`
		Rows        []struct {
			Target string `json:"target"`
			Cells  map[string]struct {
				Tier  string `json:"tier"`
				Value *int64 `json:"value"`
			} `json:"cells"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if len(doc.Sources) != 2 || doc.Sources[0] != "snode1" || doc.Sources[1] != "anode1" {
		t.Errorf("unexpected sources: %v", doc.Sources)
	}
	if len(doc.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(doc.Rows))
	}

	first := doc.Rows[0]
	if first.Target != "http://v1" {
		t.Errorf("unexpected first target %q", first.Target)
	}
	if c := first.Cells["snode1"]; c.Tier != "JUST_CHANGED" || c.Value == nil || *c.Value != 42 {
		t.Errorf("unexpected snode1 cell: %+v", c)
	}
	if c := first.Cells["anode1"]; c.Tier != "MISSING" || c.Value != nil {
		t.Errorf("missing cell should have null value: %+v", c)
	}
	if c := doc.Rows[1].Cells["anode1"]; c.Tier != "UNKNOWN_FIRST_SEEN" || c.Value == nil || *c.Value != 0 {
		t.Errorf("zero offset should be kept: %+v", c)
	}
}

func TestJSONFormatterEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(&buf).Format(model.Matrix{Header: []string{"target"}}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"rows": []`) || !strings.Contains(buf.String(), `"sources": []`) {
		t.Errorf("expected empty arrays, got:\n%s", buf.String())
	}
}

func TestCSVFormatterFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVFormatter(&buf).Format(sampleMatrix()); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}

	want := [][]string{
		{"target", "snode1", "anode1"},
		{"http://v1", "42", "N/A"},
		{"http://v2", "7", "0"},
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i := range want {
		if strings.Join(records[i], ",") != strings.Join(want[i], ",") {
			t.Errorf("record %d = %v, want %v", i, records[i], want[i])
		}
	}
}

func TestCSVFormatterHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVFormatter(&buf).Format(emptyMatrix()); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "target,snode1\n" {
		t.Errorf("unexpected output %q", got)
	}
}
