package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	str "recordsync/internal/platform/strings"
	"recordsync/internal/services/report/domain"
)

// Header returns the keys of the widest row
func Header(rows []domain.Row) []string {
	var widest domain.Row
	for _, r := range rows {
		if len(r) > len(widest) {
			widest = r
		}
	}
	keys := make([]string, len(widest))
	for i, f := range widest {
		keys[i] = f.Key
	}
	return keys
}

func cell(r domain.Row, key string) string {
	v, ok := r.Get(key)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// RenderTSV writes a header line then one tab separated line per row
func RenderTSV(rows []domain.Row) []byte {
	header := Header(rows)
	var b bytes.Buffer
	b.WriteString(strings.Join(header, "\t"))
	b.WriteByte('\n')
	for _, r := range rows {
		vals := make([]string, len(header))
		for i, k := range header {
			vals[i] = str.EscapeNewlines(strings.ReplaceAll(cell(r, k), "\t", " "))
		}
		b.WriteString(strings.Join(vals, "\t"))
		b.WriteByte('\n')
	}
	return b.Bytes()
}

var tableTmpl = template.Must(template.New("report").Parse(`<!doctype html><html><head><meta charset="utf-8">` +
	`<style>table{border-collapse:collapse}th,td{border:1px solid #000;padding:2px 6px}</style>` +
	`</head><body><table><thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>` +
	`<tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody></table></body></html>`))

// RenderHTML writes a bordered table, newest row first
func RenderHTML(rows []domain.Row) ([]byte, error) {
	header := Header(rows)
	cells := make([][]string, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		vals := make([]string, len(header))
		for j, k := range header {
			vals[j] = cell(rows[i], k)
		}
		cells = append(cells, vals)
	}
	var b bytes.Buffer
	if err := tableTmpl.Execute(&b, struct {
		Header []string
		Rows   [][]string
	}{header, cells}); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// RenderJSON writes the rows indented
func RenderJSON(rows []domain.Row) ([]byte, error) {
	if rows == nil {
		rows = []domain.Row{}
	}
	return json.MarshalIndent(rows, "", "  ")
}
