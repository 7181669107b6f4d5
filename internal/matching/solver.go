package matching

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"kics/internal/errs"
)

// ErrNodeLimit is returned when branch and bound gives up before proving
// optimality.
var ErrNodeLimit = errors.New("branch and bound node limit reached")

const (
	integralityTol = 1e-6
	pruneTol       = 1e-9
)

// BranchAndBound solves the assignment problem exactly with LP relaxations
// solved by the simplex method.
type BranchAndBound struct {
	// Tol is the simplex tolerance.
	Tol float64
	// MaxNodes bounds the number of relaxations solved.
	MaxNodes int
}

// NewBranchAndBound returns a solver with default limits.
func NewBranchAndBound() *BranchAndBound {
	return &BranchAndBound{Tol: 1e-10, MaxNodes: 10000}
}

type node struct {
	fixed  []Pair
	banned map[Pair]bool
}

type relaxation struct {
	value float64
	vars  []Pair
	x     []float64
}

// Solve implements Solver.
//
// Only pairs with c[i,j] < mu[j] can lower the objective, so all other
// variables stay at zero. Leaving every scaffold unmatched is the incumbent
// at the root; an empty result means nothing improves on it.
func (s *BranchAndBound) Solve(c mat.Matrix, mu []float64) ([]Pair, error) {
	_, m := c.Dims()
	if len(mu) != m {
		return nil, fmt.Errorf("%d penalties for %d scaffolds: %w", len(mu), m, errs.ErrInvalidInput)
	}
	maxNodes := s.MaxNodes
	if maxNodes <= 0 {
		maxNodes = math.MaxInt
	}

	var best []Pair
	bestCost := 0.0

	stack := []node{{banned: map[Pair]bool{}}}
	for visited := 0; len(stack) > 0; visited++ {
		if visited >= maxNodes {
			return nil, fmt.Errorf("%w after %d relaxations", ErrNodeLimit, visited)
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var fixedCost float64
		for _, p := range nd.fixed {
			fixedCost += c.At(p.Estimate, p.Scaffold) - mu[p.Scaffold]
		}
		r, err := s.relax(c, mu, nd)
		if err != nil {
			return nil, err
		}
		bound := fixedCost + r.value
		if bound >= bestCost-pruneTol {
			continue
		}

		k := r.mostFractional()
		if k < 0 {
			bestCost = bound
			best = append(slices.Clone(nd.fixed), r.chosen()...)
			continue
		}

		v := r.vars[k]
		banned := maps.Clone(nd.banned)
		banned[v] = true
		stack = append(stack,
			node{fixed: nd.fixed, banned: banned},
			node{fixed: append(slices.Clone(nd.fixed), v), banned: nd.banned},
		)
	}
	return best, nil
}

// relax solves the LP relaxation of the subproblem left after removing the
// rows and columns of fixed pairs and the banned variables. The LP is put
// in standard form with one slack per row and column constraint.
func (s *BranchAndBound) relax(c mat.Matrix, mu []float64, nd node) (relaxation, error) {
	n, m := c.Dims()
	usedRows := make(map[int]bool, len(nd.fixed))
	usedCols := make(map[int]bool, len(nd.fixed))
	for _, p := range nd.fixed {
		usedRows[p.Estimate], usedCols[p.Scaffold] = true, true
	}

	var vars []Pair
	rowIdx := map[int]int{}
	colIdx := map[int]int{}
	for i := 0; i < n; i++ {
		if usedRows[i] {
			continue
		}
		for j := 0; j < m; j++ {
			p := Pair{Estimate: i, Scaffold: j}
			if usedCols[j] || nd.banned[p] || c.At(i, j)-mu[j] >= 0 {
				continue
			}
			vars = append(vars, p)
			if _, ok := rowIdx[i]; !ok {
				rowIdx[i] = len(rowIdx)
			}
			if _, ok := colIdx[j]; !ok {
				colIdx[j] = len(colIdx)
			}
		}
	}
	if len(vars) == 0 {
		return relaxation{}, nil
	}

	nv, nr, nc := len(vars), len(rowIdx), len(colIdx)
	cons := nr + nc
	A := mat.NewDense(cons, nv+cons, nil)
	cost := make([]float64, nv+cons)
	b := make([]float64, cons)
	basic := make([]int, cons)
	for k, p := range vars {
		A.Set(rowIdx[p.Estimate], k, 1)
		A.Set(nr+colIdx[p.Scaffold], k, 1)
		cost[k] = c.At(p.Estimate, p.Scaffold) - mu[p.Scaffold]
	}
	for r := 0; r < cons; r++ {
		A.Set(r, nv+r, 1)
		b[r] = 1
		basic[r] = nv + r
	}

	opt, x, err := lp.Simplex(cost, A, b, s.Tol, basic)
	if err != nil {
		return relaxation{}, fmt.Errorf("simplex: %w", err)
	}
	return relaxation{value: opt, vars: vars, x: x[:nv]}, nil
}

func (r relaxation) mostFractional() int {
	best, bestDist := -1, integralityTol
	for k, v := range r.x {
		if d := math.Min(v, 1-v); d > bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

func (r relaxation) chosen() []Pair {
	var out []Pair
	for k, v := range r.x {
		if v > 0.5 {
			out = append(out, r.vars[k])
		}
	}
	return out
}
