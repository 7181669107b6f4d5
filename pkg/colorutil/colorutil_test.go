package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHSVToRGB(t *testing.T) {
	tests := []struct {
		h, s, v float64
		want    color.RGBA
	}{
		{0, 1, 1, color.RGBA{255, 0, 0, 255}},
		{120, 1, 1, color.RGBA{0, 255, 0, 255}},
		{240, 1, 1, color.RGBA{0, 0, 255, 255}},
		{360, 1, 1, color.RGBA{255, 0, 0, 255}},
		{-120, 1, 1, color.RGBA{0, 0, 255, 255}},
		{42, 0, 0.5, color.RGBA{128, 128, 128, 255}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HSVToRGB(tt.h, tt.s, tt.v), "h=%v s=%v v=%v", tt.h, tt.s, tt.v)
	}
}

func TestLabel_Distinct(t *testing.T) {
	seen := map[color.RGBA]bool{}
	for n := 1; n <= 24; n++ {
		c := Label(n)
		assert.False(t, seen[c], "color for %d repeats", n)
		seen[c] = true
		assert.Equal(t, c, Label(n))
	}
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#ff0000", Hex(Red))
	assert.Equal(t, "#000000", Hex(Black))
	assert.Equal(t, "#ffffff", Hex(White))
}
