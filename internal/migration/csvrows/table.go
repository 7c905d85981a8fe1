package csvrows

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumns is returned by Table.Require when the header lacks columns.
var ErrMissingColumns = errors.New("csv header is missing required columns")

// Record maps header names to the cell values of one row.
type Record map[string]string

// Get returns the trimmed value of col, or "" if the row has no such cell.
func (r Record) Get(col string) string {
	return strings.TrimSpace(r[col])
}

// Table is a parsed CSV payload whose first row is the header.
type Table struct {
	Header []string
	index  map[string]int
	rows   [][]string
}

func NewTable(rows [][]string) *Table {
	t := &Table{index: map[string]int{}}
	if len(rows) == 0 {
		return t
	}
	t.Header = make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		t.Header[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	t.rows = rows[1:]
	return t
}

// Len is the number of data rows, blank ones included.
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

func (t *Table) Require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// Records maps every non-blank data row onto the header. Short rows yield empty
// values for the missing columns and cells past the header are ignored. When a
// header name repeats, the first column with that name wins.
func (t *Table) Records() []Record {
	out := make([]Record, 0, len(t.rows))
	for _, row := range t.rows {
		if isBlank(row) {
			continue
		}
		rec := make(Record, len(t.index))
		for name, i := range t.index {
			if i < len(row) {
				rec[name] = row[i]
			} else {
				rec[name] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}
