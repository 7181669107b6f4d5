// Package similarity computes the ratio-based size similarity used to compare
// chromosome estimates with scaffold sizes.
package similarity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"kics/internal/errs"
)

// Of returns exp(|ln a - ln b|), i.e. max(a,b)/min(a,b). Equal sizes give 1;
// larger values mean a worse fit.
func Of(a, b float64) float64 {
	return math.Exp(math.Abs(math.Log(a) - math.Log(b)))
}

// Vector applies Of element-wise. Both slices must have the same length.
func Vector(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("length mismatch %d != %d: %w", len(a), len(b), errs.ErrInvalidInput)
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = Of(a[i], b[i])
	}
	return out, nil
}

// Matrix returns the len(estimates) x len(scaffolds) matrix with
// C[i,j] = Of(estimates[i], scaffolds[j]). All sizes must be positive.
func Matrix(estimates, scaffolds []float64) (*mat.Dense, error) {
	if len(estimates) == 0 || len(scaffolds) == 0 {
		return nil, fmt.Errorf("empty size list: %w", errs.ErrInvalidInput)
	}
	if err := checkPositive(estimates); err != nil {
		return nil, fmt.Errorf("estimates: %w", err)
	}
	if err := checkPositive(scaffolds); err != nil {
		return nil, fmt.Errorf("scaffolds: %w", err)
	}

	c := mat.NewDense(len(estimates), len(scaffolds), nil)
	c.Apply(func(i, j int, _ float64) float64 {
		return Of(estimates[i], scaffolds[j])
	}, c)
	return c, nil
}

// ColumnMin returns the minimum of each column of m.
func ColumnMin(m mat.Matrix) []float64 {
	r, c := m.Dims()
	out := make([]float64, c)
	for j := 0; j < c; j++ {
		out[j] = math.Inf(1)
		for i := 0; i < r; i++ {
			out[j] = math.Min(out[j], m.At(i, j))
		}
	}
	return out
}

func checkPositive(sizes []float64) error {
	for i, s := range sizes {
		if !(s > 0) || math.IsInf(s, 0) {
			return fmt.Errorf("size %v at %d is not a positive finite number: %w", s, i, errs.ErrInvalidInput)
		}
	}
	return nil
}
