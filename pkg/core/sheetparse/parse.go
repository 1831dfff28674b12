package sheetparse

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Number parses an attendance or metric cell. Commas and surrounding
// whitespace are stripped; anything unparseable (including blank)
// defaults to 0 rather than failing the row.
func Number(s string) float64 {
	cleaned := cleanNumeric(s)
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// Amount parses a financial cell with the same tolerance as Number but
// keeps decimal precision.
func Amount(s string) decimal.Decimal {
	cleaned := cleanNumeric(s)
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Date parses a sheet date cell, accepting ISO (2006-01-02) or
// M/D/YYYY. The second return is false when the cell holds neither;
// callers skip such rows.
func Date(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse("1/2/2006", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// SheetDate formats a date the way the sheet's existing rows carry it.
func SheetDate(t time.Time) string {
	return t.Format("1/2/2006")
}

func cleanNumeric(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}
