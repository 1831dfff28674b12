package sheetparse

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{
			name:   "iso format",
			input:  "2026-01-25",
			want:   time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "slash format same date",
			input:  "1/25/2026",
			want:   time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "slash format with padding",
			input:  " 12/3/2025 ",
			want:   time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "garbage",
			input:  "not-a-date",
			wantOK: false,
		},
		{
			name:   "blank",
			input:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Date(tt.input)
			if !tt.wantOK {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func TestDateRoundTrip(t *testing.T) {
	iso, ok := Date("2026-01-25")
	require.True(t, ok)
	slash, ok := Date("1/25/2026")
	require.True(t, ok)

	assert.True(t, iso.Equal(slash))
	assert.Equal(t, "1/25/2026", SheetDate(iso))
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "plain", input: "42", want: 42},
		{name: "decimal", input: "10.5", want: 10.5},
		{name: "thousands separator", input: "1,250", want: 1250},
		{name: "surrounding whitespace", input: "  7 ", want: 7},
		{name: "blank defaults to zero", input: "", want: 0},
		{name: "garbage defaults to zero", input: "n/a", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.input))
		})
	}
}

func TestAmount(t *testing.T) {
	assert.True(t, Amount("1,234.50").Equal(decimal.RequireFromString("1234.50")))
	assert.True(t, Amount("").IsZero())
	assert.True(t, Amount("garbage").IsZero())
}
