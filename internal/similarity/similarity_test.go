package similarity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kics/internal/errs"
)

func TestOf(t *testing.T) {
	assert.InDelta(t, 1.0, Of(42, 42), 1e-12)
	assert.InDelta(t, 2.0, Of(100, 50), 1e-12)
	assert.InDelta(t, 2.0, Of(50, 100), 1e-12)
	assert.InDelta(t, 1.01, Of(100, 101), 1e-12)
}

func TestOf_Properties(t *testing.T) {
	sizes := []float64{0.5, 1, 3, 17.25, 1e6, 2.5e8}
	for _, a := range sizes {
		for _, b := range sizes {
			s := Of(a, b)
			assert.GreaterOrEqual(t, s, 1.0-1e-12)
			assert.InDelta(t, s, Of(b, a), 1e-9*s)
			assert.InDelta(t, math.Max(a, b)/math.Min(a, b), s, 1e-9*s)
		}
	}
}

func TestVector(t *testing.T) {
	got, err := Vector([]float64{100, 50}, []float64{101, 51})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.01, 1.02}, got, 1e-12)

	_, err = Vector([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestMatrix(t *testing.T) {
	c, err := Matrix([]float64{100, 50}, []float64{100, 50, 25})
	require.NoError(t, err)

	r, cols := c.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, cols)
	assert.InDelta(t, 1.0, c.At(0, 0), 1e-12)
	assert.InDelta(t, 2.0, c.At(0, 1), 1e-12)
	assert.InDelta(t, 4.0, c.At(0, 2), 1e-12)
	assert.InDelta(t, 2.0, c.At(1, 2), 1e-12)

	assert.InDeltaSlice(t, []float64{1, 1, 2}, ColumnMin(c), 1e-12)
}

func TestMatrix_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		est, scaff []float64
	}{
		{"empty estimates", nil, []float64{1}},
		{"empty scaffolds", []float64{1}, nil},
		{"zero", []float64{0}, []float64{1}},
		{"negative", []float64{1}, []float64{-3}},
		{"nan", []float64{math.NaN()}, []float64{1}},
		{"inf", []float64{1}, []float64{math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Matrix(tt.est, tt.scaff)
			assert.ErrorIs(t, err, errs.ErrInvalidInput)
		})
	}
}
