package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMarketCap(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		in   *float64
		want string
	}{
		{nil, "N/A"},
		{f(2.9e12), "2.9T"},
		{f(350e9), "350.0B"},
		{f(75.3e6), "75.3M"},
		{f(999), "999"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMarketCap(tt.in))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Apple", truncate("Apple", 10))
	assert.Equal(t, "Reliance…", truncate("Reliance Industries", 9))
	assert.Equal(t, "टाटा", truncate("टाटा", 4), "counts runes, not bytes")
}

func TestOptFloat(t *testing.T) {
	v := 12.345
	assert.Equal(t, "12.3", optFloat(&v, 1))
	assert.Equal(t, "N/A", optFloat(nil, 1))
}
