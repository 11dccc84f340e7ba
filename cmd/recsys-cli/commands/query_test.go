package commands

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short passes through", "Mouse", 10, "Mouse"},
		{"exact length passes through", "Keyboard", 8, "Keyboard"},
		{"long gets ellipsis", "Mechanical Keyboard", 10, "Mechanica…"},
		{"multibyte title stays valid", "₹1,299 Wireless Mouse Deluxe", 10, "₹1,299 Wi…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestTruncate_CountsRunesNotBytes(t *testing.T) {
	// 48 rupee signs are 144 bytes but only 48 runes: no truncation.
	s := strings.Repeat("₹", 48)
	assert.Equal(t, s, truncate(s, 48))
}
