package segment

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kics/internal/errs"
	"kics/pkg/geometry"
)

func TestForegroundLevel(t *testing.T) {
	tests := []struct {
		threshold float64
		want      int
		ok        bool
	}{
		{0.5, 127, true},   // v/255 < 0.5 <=> v <= 127
		{0.25, 191, true},  // v < 191.25
		{0.999, 0, true},   // v < 0.255
		{1.0, 0, false},    // nothing is below 0
		{0.0001, 254, true},
	}
	for _, tt := range tests {
		got, ok := foregroundLevel(tt.threshold)
		assert.Equal(t, tt.ok, ok, "threshold %v", tt.threshold)
		if tt.ok {
			assert.Equal(t, tt.want, got, "threshold %v", tt.threshold)
		}
	}
}

func TestRegionsFromComponents(t *testing.T) {
	comps := []component{
		{label: 1, left: 10, top: 5, width: 4, height: 20, area: 60},
		{label: 2, left: 30, top: 6, width: 5, height: 25, area: 90},
		{label: 3, left: 50, top: 7, width: 1, height: 1, area: 1},
	}

	regions := regionsFromComponents(comps, 2)
	require.Len(t, regions, 2)
	assert.Equal(t, Region{Label: 2, Area: 90, BBox: geometry.NewBBox(6, 30, 31, 35)}, regions[0])
	assert.Equal(t, Region{Label: 1, Area: 60, BBox: geometry.NewBBox(5, 10, 25, 14)}, regions[1])

	assert.Len(t, regionsFromComponents(comps, 0), 3)
}

func TestParams(t *testing.T) {
	p := DefaultParams()
	require.NoError(t, p.Validate())

	assert.InDelta(t, 0.3, p.WithThreshold(0.3).Threshold, 1e-12)
	assert.InDelta(t, 2, p.WithSigma(2).Sigma, 1e-12)
	assert.InDelta(t, 0.5, p.Threshold, 1e-12, "copy modifiers leave the original alone")

	assert.ErrorIs(t, p.WithThreshold(0).Validate(), errs.ErrInvalidInput)
	assert.ErrorIs(t, p.WithThreshold(1).Validate(), errs.ErrInvalidInput)
	assert.ErrorIs(t, p.WithSigma(-1).Validate(), errs.ErrInvalidInput)
}

func TestPacked(t *testing.T) {
	full := image.NewGray(image.Rect(0, 0, 4, 3))
	for i := range full.Pix {
		full.Pix[i] = uint8(i)
	}
	assert.Equal(t, full.Pix, packed(full))

	sub := full.SubImage(image.Rect(1, 1, 3, 3)).(*image.Gray)
	assert.Equal(t, []byte{5, 6, 9, 10}, packed(sub))
}
