package stats

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// Render writes reports in some output format.
type Render interface {
	Write(w io.Writer, r Report) error
}

// TableRender writes the boxed table produced by Table.
type TableRender struct {
	Title string
}

func (tr *TableRender) Write(w io.Writer, r Report) error {
	_, err := io.WriteString(w, Table(tr.Title, r))
	return err
}

// JSONRender writes one JSON object per report.
type JSONRender struct{}

func (jr *JSONRender) Write(w io.Writer, r Report) error {
	return json.NewEncoder(w).Encode(r)
}

// YAMLRender writes one YAML document per report.
type YAMLRender struct{}

func (yr *YAMLRender) Write(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(r)
}

// RenderFor returns the renderer for format ("table", "json" or "yaml").
// Unknown formats fall back to the table.
func RenderFor(format, title string) Render {
	switch format {
	case "json":
		return &JSONRender{}
	case "yaml", "yml":
		return &YAMLRender{}
	default:
		return &TableRender{Title: title}
	}
}
