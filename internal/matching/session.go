package matching

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"kics/internal/errs"
	"kics/internal/series"
	"kics/internal/similarity"
)

// Score summarises how well a matching explains the estimates.
type Score struct {
	// Joined holds, per estimate, the summed size of its distinct matched
	// scaffolds.
	Joined []float64
	// PerEstimate is similarity(estimate, 1+Joined) for assigned estimates
	// and +Inf for the rest.
	PerEstimate []float64
	// Mean averages PerEstimate over assigned estimates. It is NaN when no
	// estimate is assigned.
	Mean float64
	// Assigned counts estimates with Joined >= 1.
	Assigned int
	// Selection counts, per scaffold, how many pairs reference it.
	Selection []int
}

// IsAssigned reports whether estimate i has matched scaffolds.
func (s Score) IsAssigned(i int) bool {
	return !math.IsInf(s.PerEstimate[i], 1)
}

func (s Score) clone() Score {
	return Score{
		Joined:      slices.Clone(s.Joined),
		PerEstimate: slices.Clone(s.PerEstimate),
		Mean:        s.Mean,
		Assigned:    s.Assigned,
		Selection:   slices.Clone(s.Selection),
	}
}

// Session holds a matching between sorted estimates and scaffolds and keeps
// its score current across edits. A Session is not safe for concurrent use.
type Session struct {
	id        string
	estimates series.Series
	scaffolds series.Series
	corr      *mat.Dense
	pairs     []Pair
	score     Score

	logger   *slog.Logger
	observer Observer
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver sets the observer notified about edits.
func WithObserver(o Observer) SessionOption {
	return func(s *Session) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithID sets the session ID instead of generating one.
func WithID(id string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// NewSession creates a session over estimates and scaffolds, both sorted by
// size in descending order, starting from pairs.
func NewSession(estimates, scaffolds series.Series, pairs []Pair, opts ...SessionOption) (*Session, error) {
	if err := estimates.Validate(); err != nil {
		return nil, err
	}
	if err := scaffolds.Validate(); err != nil {
		return nil, err
	}
	if !estimates.IsSortedDescending() || !scaffolds.IsSortedDescending() {
		return nil, fmt.Errorf("series must be sorted by descending size: %w", errs.ErrInvalidInput)
	}

	corr, err := similarity.Matrix(estimates.Sizes(), scaffolds.Sizes())
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:        uuid.NewString(),
		estimates: estimates.Clone(),
		scaffolds: scaffolds.Clone(),
		corr:      corr,
		logger:    slog.Default(),
		observer:  nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, p := range pairs {
		if err := s.checkPair(p.Estimate, p.Scaffold); err != nil {
			return nil, err
		}
	}
	s.pairs = slices.Clone(pairs)
	s.rescore()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Estimates returns the sorted estimate series.
func (s *Session) Estimates() series.Series { return s.estimates.Clone() }

// Scaffolds returns the sorted scaffold series.
func (s *Session) Scaffolds() series.Series { return s.scaffolds.Clone() }

// Correlation returns a copy of the estimate x scaffold similarity matrix.
func (s *Session) Correlation() *mat.Dense { return mat.DenseCopyOf(s.corr) }

// Pairs returns a copy of the current matching in edit order.
func (s *Session) Pairs() []Pair { return slices.Clone(s.pairs) }

// Score returns the score of the current matching.
func (s *Session) Score() Score { return s.score.clone() }

// ToggleMatching removes every pair (i, j) if one exists and adds it
// otherwise. i indexes estimates, j scaffolds.
func (s *Session) ToggleMatching(i, j int) (Score, error) {
	if err := s.checkPair(i, j); err != nil {
		return Score{}, err
	}
	p := Pair{Estimate: i, Scaffold: j}
	if !slices.Contains(s.pairs, p) {
		return s.AddMatching(i, j)
	}
	s.pairs = slices.DeleteFunc(s.pairs, func(q Pair) bool { return q == p })
	s.edited("toggle")
	return s.Score(), nil
}

// AddMatching appends the pair (i, j), even if it is already present.
func (s *Session) AddMatching(i, j int) (Score, error) {
	if err := s.checkPair(i, j); err != nil {
		return Score{}, err
	}
	s.pairs = append(s.pairs, Pair{Estimate: i, Scaffold: j})
	s.edited("add")
	return s.Score(), nil
}

// DeleteMatchings removes the pairs at the given positions of Pairs().
// Positions may repeat.
func (s *Session) DeleteMatchings(positions ...int) (Score, error) {
	drop := make(map[int]bool, len(positions))
	for _, pos := range positions {
		if pos < 0 || pos >= len(s.pairs) {
			return Score{}, fmt.Errorf("matching position %d of %d: %w", pos, len(s.pairs), errs.ErrIndex)
		}
		drop[pos] = true
	}
	kept := make([]Pair, 0, len(s.pairs))
	for pos, p := range s.pairs {
		if !drop[pos] {
			kept = append(kept, p)
		}
	}
	s.pairs = kept
	s.edited("delete")
	return s.Score(), nil
}

func (s *Session) edited(op string) {
	s.rescore()
	s.logger.Debug("matching edited",
		"session", s.id, "op", op, "pairs", len(s.pairs), "mean", s.score.Mean)
	s.observer.MatchingEdited(op, s.score.Mean)
}

func (s *Session) checkPair(i, j int) error {
	if i < 0 || i >= s.estimates.Len() {
		return fmt.Errorf("estimate %d of %d: %w", i, s.estimates.Len(), errs.ErrIndex)
	}
	if j < 0 || j >= s.scaffolds.Len() {
		return fmt.Errorf("scaffold %d of %d: %w", j, s.scaffolds.Len(), errs.ErrIndex)
	}
	return nil
}

// rescore recomputes the score. A scaffold paired twice with the same
// estimate contributes its size once to that estimate.
func (s *Session) rescore() {
	n, m := s.estimates.Len(), s.scaffolds.Len()
	sizes := s.scaffolds.Sizes()

	joined := make([]float64, n)
	selection := make([]int, m)
	seen := make(map[Pair]bool, len(s.pairs))
	for _, p := range s.pairs {
		selection[p.Scaffold]++
		if seen[p] {
			continue
		}
		seen[p] = true
		joined[p.Estimate] += sizes[p.Scaffold]
	}

	per := make([]float64, n)
	var assigned []float64
	for i, e := range s.estimates.Entries {
		if joined[i] < 1 {
			per[i] = math.Inf(1)
			continue
		}
		per[i] = similarity.Of(e.Size, 1+joined[i])
		assigned = append(assigned, per[i])
	}

	mean := math.NaN()
	if len(assigned) > 0 {
		mean = stat.Mean(assigned, nil)
	}
	s.score = Score{
		Joined:      joined,
		PerEstimate: per,
		Mean:        mean,
		Assigned:    len(assigned),
		Selection:   selection,
	}
}
