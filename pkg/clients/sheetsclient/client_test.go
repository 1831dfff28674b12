package sheetsclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{col: 1, want: "A"},
		{col: 2, want: "B"},
		{col: 20, want: "T"},
		{col: 26, want: "Z"},
		{col: 27, want: "AA"},
		{col: 52, want: "AZ"},
		{col: 53, want: "BA"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, columnLetter(tt.col), "col %d", tt.col)
	}
}

func TestTabRange(t *testing.T) {
	assert.Equal(t, "'PrayerRequest'", tabRange("PrayerRequest"))
}
