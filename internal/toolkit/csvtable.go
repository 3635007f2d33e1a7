package toolkit

import (
	"encoding/csv"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
	"unicode/utf8"
)

type CSVTable struct {
	HTML    string `json:"html"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// parseDelimiter 支持 "tab"、"\t" 和单个字符
func parseDelimiter(d string) (rune, error) {
	switch d {
	case "":
		return ',', nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	if utf8.RuneCountInString(d) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character")
	}
	r, _ := utf8.DecodeRuneInString(d)
	if r == '"' || r == '\n' || r == '\r' {
		return 0, fmt.Errorf("invalid delimiter %q", d)
	}
	return r, nil
}

// CSVToHTML 将 CSV 渲染为转义后的 HTML 表格；行长短不一时补齐空单元格
func CSVToHTML(data string, hasHeader bool, delimiter string) (*CSVTable, error) {
	if strings.TrimSpace(data) == "" {
		return nil, errors.New("csv is empty")
	}
	comma, err := parseDelimiter(delimiter)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		records = append(records, rec)
	}

	cols := 0
	for _, rec := range records {
		if len(rec) > cols {
			cols = len(rec)
		}
	}

	var b strings.Builder
	b.WriteString("<table>\n")
	body := records
	if hasHeader && len(records) > 0 {
		b.WriteString("<thead>\n")
		writeRow(&b, records[0], cols, "th")
		b.WriteString("</thead>\n")
		body = records[1:]
	}
	b.WriteString("<tbody>\n")
	for _, rec := range body {
		writeRow(&b, rec, cols, "td")
	}
	b.WriteString("</tbody>\n</table>")

	return &CSVTable{HTML: b.String(), Rows: len(body), Columns: cols}, nil
}

func writeRow(b *strings.Builder, rec []string, cols int, cell string) {
	b.WriteString("<tr>")
	for i := 0; i < cols; i++ {
		v := ""
		if i < len(rec) {
			v = rec[i]
		}
		fmt.Fprintf(b, "<%s>%s</%s>", cell, html.EscapeString(v), cell)
	}
	b.WriteString("</tr>\n")
}
