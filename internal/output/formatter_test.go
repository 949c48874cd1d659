package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"yaml", FormatYAML},
		{"yml", FormatYAML},
		{"toon", FormatTOON},
		{"", FormatText},
		{"invalid", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "out.json")

	f, err := NewFormatter(FormatJSON, outputPath, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	if f.colored {
		t.Error("file output must not be colored")
	}

	if err := f.Output(map[string]int{"n": 1}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["n"] != 1 {
		t.Errorf("got %v", got)
	}
}

func TestTable_RenderText(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("Files", []string{"Path", "Functions"}, [][]string{
		{"a.py", "3"},
		{"b.py", "1"},
	}, nil)

	if err := table.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Files", "a.py", "b.py", "3"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestTable_RenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("Stats", []string{"Metric", "Value"}, [][]string{
		{"files", "2"},
	}, nil)

	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "## Stats") {
		t.Errorf("missing title: %s", out)
	}
	if !strings.Contains(out, "| Metric | Value |") {
		t.Errorf("missing header row: %s", out)
	}
	if !strings.Contains(out, "| --- | --- |") {
		t.Errorf("missing separator row: %s", out)
	}
}

func TestTable_RenderData(t *testing.T) {
	table := NewTable("", []string{"A", "B"}, [][]string{{"1", "2"}}, nil)

	data, ok := table.RenderData().([]map[string]string)
	if !ok {
		t.Fatalf("RenderData() = %T", table.RenderData())
	}
	if len(data) != 1 || data[0]["A"] != "1" || data[0]["B"] != "2" {
		t.Errorf("RenderData() = %v", data)
	}

	wrapped := NewTable("", nil, nil, map[string]int{"x": 1})
	if _, ok := wrapped.RenderData().(map[string]int); !ok {
		t.Error("wrapped data should pass through")
	}
}

func TestSection_RenderText(t *testing.T) {
	var buf bytes.Buffer
	s := &Section{
		Title:   "Summary",
		Content: "2 files",
		Sections: []Section{
			{Title: "Detail", Content: "nested"},
		},
	}

	if err := s.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Summary\n=======") {
		t.Errorf("top section underlined with =: %s", out)
	}
	if !strings.Contains(out, "Detail\n------") {
		t.Errorf("nested section underlined with -: %s", out)
	}
}

func TestFormatter_YAML(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "out.yaml")
	f, err := NewFormatter(FormatYAML, outputPath, false)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}

	if err := f.Output(map[string]string{"lang": "python"}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	f.Close()

	data, _ := os.ReadFile(outputPath)
	if !strings.Contains(string(data), "lang: python") {
		t.Errorf("yaml output = %s", data)
	}
}
