// Package csvrows is a lenient CSV tokenizer for spreadsheet exports.
//
// Quoted fields may contain commas, doubled quotes and line breaks. Malformed
// input never fails: an unterminated quote runs to the end of the payload and
// the last field and row are flushed as-is.
package csvrows

import "strings"

const bom = "\ufeff"

// Parse splits text into rows of fields. CRLF, LF and a lone CR all end a row
// when they appear outside quotes. Blank rows left by trailing line breaks are
// dropped.
func Parse(text string) [][]string {
	text = strings.TrimPrefix(text, bom)

	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)
	endField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	endRow := func() {
		endField()
		rows = append(rows, row)
		row = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inQuotes {
			if c != '"' {
				field.WriteByte(c)
				continue
			}
			if i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
				continue
			}
			inQuotes = false
			continue
		}
		switch c {
		case '"':
			inQuotes = true
		case ',':
			endField()
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
		case '\n':
			endRow()
		default:
			field.WriteByte(c)
		}
	}
	if inQuotes || field.Len() > 0 || len(row) > 0 {
		endRow()
	}

	for len(rows) > 0 && isBlank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func isBlank(row []string) bool {
	for _, f := range row {
		if f != "" {
			return false
		}
	}
	return true
}
