// Package sheetparse holds the tolerant parsing helpers for spreadsheet
// data: alias-based header resolution, loose numeric and date parsing,
// and calendar helpers. Sheets are edited by hand, so everything here
// prefers skipping or defaulting over failing.
package sheetparse

import "strings"

// Field maps a logical column to the header strings that may carry it.
// Aliases are tried in order; the first header match wins.
type Field struct {
	Name    string
	Aliases []string
}

// Columns is a resolved header index table: logical field name to
// 0-based column index, -1 when no alias matched. It is built once per
// sync pass rather than re-scanning headers per row.
type Columns map[string]int

// Resolve builds the index table for one tab's header row. Header
// matching is case-insensitive exact match on trimmed text. Missing
// headers resolve to -1 so lookups yield blank values rather than
// errors.
func Resolve(headers []string, fields []Field) Columns {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols := make(Columns, len(fields))
	for _, f := range fields {
		cols[f.Name] = -1
		for _, alias := range f.Aliases {
			if idx := indexOf(lowered, strings.ToLower(alias)); idx >= 0 {
				cols[f.Name] = idx
				break
			}
		}
	}
	return cols
}

// Cell returns the trimmed value of the named field in a data row, or
// "" when the field is unresolved or the row is short.
func (c Columns) Cell(row []string, field string) string {
	idx, ok := c[field]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func indexOf(haystack []string, needle string) int {
	for i, h := range haystack {
		if h == needle {
			return i
		}
	}
	return -1
}
