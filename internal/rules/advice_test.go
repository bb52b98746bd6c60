package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripSources(t *testing.T) {
	tests := []struct {
		name   string
		advice string
		want   string
	}{
		{"empty", "", ""},
		{"untouched", "1. HRCT\n2. MDD", "1. HRCT\n2. MDD"},
		{"guideline line", "치료\n출처: ILD 진료지침 2판\n추적", "치료\n추적"},
		{"case-insensitive", "A\nild진료지침\nB", "A\nB"},
		{"revised guideline link", "A\nhttps://x/ILD+진료지침+개정+(2023년)\nB", "A\nB"},
		{"collapses blank runs", "A\n\n\n\nB\n\n", "A\n\nB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripSources(tt.advice))
		})
	}
}
