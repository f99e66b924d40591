package report

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"profiler/internal/engine"
)

// RenderRow renders a sampled row as a flat key/value object in column order:
//
//	{"id": 1, "name": "alice", "score": null}
//
// Values are JSON-encoded (times as RFC 3339 strings, NULL as null). A value
// the encoder rejects (NaN, Inf, channels) is rendered as its quoted fmt form.
func RenderRow(r engine.Row) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Write(encodeValue(c.Name))
		b.WriteString(": ")
		b.Write(encodeValue(c.Value))
	}
	b.WriteByte('}')
	return b.String()
}

func encodeValue(v any) []byte {
	out, err := json.Marshal(v)
	if err != nil {
		out, _ = json.Marshal(fmt.Sprint(v))
	}
	return out
}

type profileDoc struct {
	Database     string            `json:"database,omitempty"`
	Table        string            `json:"table"`
	TotalRows    int64             `json:"total_rows"`
	TotalColumns int               `json:"total_columns"`
	Columns      []ColumnProfile   `json:"columns"`
	Sample       []json.RawMessage `json:"sample"`
}

// JSON renders the profile as an indented JSON document. Sample rows keep
// their column order.
func (p *Profile) JSON() ([]byte, error) {
	doc := profileDoc{
		Database:     p.Database,
		Table:        p.Table,
		TotalRows:    p.TotalRows,
		TotalColumns: len(p.Columns),
		Columns:      p.Columns,
		Sample:       make([]json.RawMessage, 0, len(p.Sample)),
	}
	if doc.Columns == nil {
		doc.Columns = []ColumnProfile{}
	}
	for _, r := range p.Sample {
		doc.Sample = append(doc.Sample, json.RawMessage(RenderRow(r)))
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("report: encode json: %w", err)
	}
	return out, nil
}
