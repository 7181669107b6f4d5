// Package matching assigns scaffolds to chromosome size estimates and scores
// the resulting matching.
//
// A matching is a list of (estimate, scaffold) pairs. An optimal matching
// minimises the summed similarity of matched pairs plus a penalty for every
// scaffold left unmatched, with at most one scaffold per estimate and at most
// one estimate per scaffold. Interactive edits on a Session may later break
// those limits.
package matching

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"kics/internal/errs"
	"kics/internal/similarity"
)

// DefaultUnmatchedPenalty is the default multiplier for the cost of leaving a
// scaffold unmatched.
const DefaultUnmatchedPenalty = 2.0

// Pair matches the estimate at index Estimate with the scaffold at index
// Scaffold.
type Pair struct {
	Estimate int `json:"estimate"`
	Scaffold int `json:"scaffold"`
}

// String renders the pair as "estimate:scaffold".
func (p Pair) String() string {
	return fmt.Sprintf("%d:%d", p.Estimate, p.Scaffold)
}

// ParsePair parses "estimate:scaffold".
func ParsePair(s string) (Pair, error) {
	est, scaf, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Pair{}, fmt.Errorf("pair %q is not estimate:scaffold: %w", s, errs.ErrParse)
	}
	i, err := strconv.Atoi(est)
	if err != nil {
		return Pair{}, fmt.Errorf("pair %q: %w", s, errs.ErrParse)
	}
	j, err := strconv.Atoi(scaf)
	if err != nil {
		return Pair{}, fmt.Errorf("pair %q: %w", s, errs.ErrParse)
	}
	return Pair{Estimate: i, Scaffold: j}, nil
}

// Solver finds a 0/1 assignment minimising
//
//	sum_ij x_ij*C[i,j] + sum_j mu[j]*(1 - sum_i x_ij)
//
// subject to every row sum and every column sum of x being at most one.
// C is the n x m similarity matrix, mu has length m.
type Solver interface {
	Solve(c mat.Matrix, mu []float64) ([]Pair, error)
}

// FindOptimalAssignment returns the optimal matching of estimates against
// scaffolds using the default solver. Pairs are ordered by scaffold index,
// then estimate index. An empty result means that leaving every scaffold
// unmatched is optimal.
func FindOptimalAssignment(estimates, scaffolds []float64, unmatchedPenalty float64) ([]Pair, error) {
	return FindOptimalAssignmentWith(NewBranchAndBound(), estimates, scaffolds, unmatchedPenalty)
}

// FindOptimalAssignmentWith is FindOptimalAssignment with an explicit solver.
func FindOptimalAssignmentWith(s Solver, estimates, scaffolds []float64, unmatchedPenalty float64) ([]Pair, error) {
	if unmatchedPenalty < 0 || math.IsNaN(unmatchedPenalty) || math.IsInf(unmatchedPenalty, 0) {
		return nil, fmt.Errorf("unmatched penalty %v: %w", unmatchedPenalty, errs.ErrInvalidInput)
	}
	c, err := similarity.Matrix(estimates, scaffolds)
	if err != nil {
		return nil, err
	}

	mu := similarity.ColumnMin(c)
	for j := range mu {
		mu[j] = unmatchedPenalty / mu[j]
	}

	pairs, err := s.Solve(c, mu)
	if err != nil {
		return nil, fmt.Errorf("failed to solve assignment: %w", err)
	}
	SortPairs(pairs)
	return pairs, nil
}

// SortPairs orders pairs by scaffold index, then estimate index.
func SortPairs(pairs []Pair) {
	slices.SortFunc(pairs, func(a, b Pair) int {
		return cmp.Or(cmp.Compare(a.Scaffold, b.Scaffold), cmp.Compare(a.Estimate, b.Estimate))
	})
}

// Identity returns the pairs (k, k) for k < size.
func Identity(size int) []Pair {
	pairs := make([]Pair, size)
	for k := range pairs {
		pairs[k] = Pair{Estimate: k, Scaffold: k}
	}
	return pairs
}

// Cost evaluates the assignment objective for pairs. Duplicate pairs are
// counted every time they occur.
func Cost(c mat.Matrix, mu []float64, pairs []Pair) float64 {
	var total float64
	for _, m := range mu {
		total += m
	}
	for _, p := range pairs {
		total += c.At(p.Estimate, p.Scaffold) - mu[p.Scaffold]
	}
	return total
}

// Feasible reports whether every estimate and every scaffold occurs at most
// once in pairs.
func Feasible(pairs []Pair) bool {
	rows := make(map[int]bool, len(pairs))
	cols := make(map[int]bool, len(pairs))
	for _, p := range pairs {
		if rows[p.Estimate] || cols[p.Scaffold] {
			return false
		}
		rows[p.Estimate], cols[p.Scaffold] = true, true
	}
	return true
}
