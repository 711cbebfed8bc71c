package corpus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/labeleval/internal/model"
)

// RawTable is an arbitrary-width table as delivered by a corpus source.
// A nil cell is a missing value.
type RawTable struct {
	Columns []string
	Rows    [][]any
}

// ColumnIndex returns the position of a named column
func (t *RawTable) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Len returns the row count
func (t *RawTable) Len() int {
	return len(t.Rows)
}

// Head returns a table holding at most the first n rows; n <= 0 keeps everything
func (t *RawTable) Head(n int) *RawTable {
	if n <= 0 || n >= len(t.Rows) {
		return t
	}
	return &RawTable{Columns: t.Columns, Rows: t.Rows[:n]}
}

// check verifies every row has one cell per column
func (t *RawTable) check() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%w: row %d has %d cells, table has %d columns", model.ErrTypeMismatch, i, len(row), len(t.Columns))
		}
	}
	return nil
}

// isMissing treats nil, NaN-like markers and blank strings as missing
func isMissing(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case float64:
		return val != val
	default:
		return false
	}
}

// rowKey renders a row so identical rows (same types and values) share a key
func rowKey(row []any) string {
	var b strings.Builder
	for _, cell := range row {
		if cell == nil {
			b.WriteString("<nil>")
		} else {
			fmt.Fprintf(&b, "%T:%v", cell, cell)
		}
		b.WriteByte(0)
	}
	return b.String()
}

// cellString renders a cell the way it appears in text columns
func cellString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
