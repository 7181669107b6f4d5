package matching

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"kics/internal/errs"
	"kics/internal/series"
)

// Mode selects how the initial matching is built.
type Mode string

const (
	// ModeOptimal solves the assignment problem.
	ModeOptimal Mode = "optimal"
	// ModeByName pairs estimates and scaffolds sharing an ID.
	ModeByName Mode = "by-name"
	// ModeSortOrder pairs the k-th largest estimate with the k-th largest
	// scaffold.
	ModeSortOrder Mode = "sort-order"
)

// FallbackWarning is logged when the identity matching replaces an empty or
// failed matching.
const FallbackWarning = "could not find an optimal matching; resorting to identity matching"

// Options controls Run.
type Options struct {
	UnmatchedPenalty float64
	// MinScaffoldSize drops smaller scaffolds when positive.
	MinScaffoldSize int64
	// MaxScaffolds keeps only the largest scaffolds when positive.
	MaxScaffolds int
	ByName       bool
	NoOptimize   bool

	Solver   Solver
	Logger   *slog.Logger
	Observer Observer
}

// DefaultOptions returns options for an optimal matching without filtering.
func DefaultOptions() Options {
	return Options{UnmatchedPenalty: DefaultUnmatchedPenalty}
}

// Mode returns the mode selected by the options.
func (o Options) Mode() Mode {
	switch {
	case o.ByName:
		return ModeByName
	case o.NoOptimize:
		return ModeSortOrder
	default:
		return ModeOptimal
	}
}

// Result is the outcome of Run.
type Result struct {
	Session *Session
	Mode    Mode
	// Fallback is set when the identity matching was used instead of the
	// requested mode.
	Fallback       bool
	FallbackReason string
}

// Run filters and sorts the inputs, builds the initial matching and opens a
// session on it. When the selected mode yields no pairs, or the solver
// fails, the identity matching over min(n, m) is used instead.
func Run(estimates, scaffolds series.Series, opts Options) (*Result, error) {
	if opts.ByName && opts.NoOptimize {
		return nil, fmt.Errorf("by-name and no-optimize are mutually exclusive: %w", errs.ErrInvalidInput)
	}
	if opts.UnmatchedPenalty < 0 || math.IsNaN(opts.UnmatchedPenalty) || math.IsInf(opts.UnmatchedPenalty, 0) {
		return nil, fmt.Errorf("unmatched penalty %v: %w", opts.UnmatchedPenalty, errs.ErrInvalidInput)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	solver := opts.Solver
	if solver == nil {
		solver = NewBranchAndBound()
	}

	estimates, scaffolds, err := Prepare(estimates, scaffolds, opts)
	if err != nil {
		return nil, err
	}

	mode := opts.Mode()
	logger.Info("building matching",
		"mode", mode, "estimates", estimates.Len(), "scaffolds", scaffolds.Len(),
		"unmatched_penalty", opts.UnmatchedPenalty)

	start := time.Now()
	var (
		pairs    []Pair
		solveErr error
	)
	switch mode {
	case ModeByName:
		pairs = matchByName(estimates, scaffolds)
	case ModeSortOrder:
		pairs = Identity(min(estimates.Len(), scaffolds.Len()))
	default:
		pairs, solveErr = FindOptimalAssignmentWith(solver, estimates.Sizes(), scaffolds.Sizes(), opts.UnmatchedPenalty)
	}
	elapsed := time.Since(start)
	observer.SolveFinished(mode, elapsed, len(pairs))
	logger.Debug("matching built", "mode", mode, "pairs", len(pairs), "elapsed", elapsed)

	res := &Result{Mode: mode}
	if solveErr != nil || len(pairs) == 0 {
		res.Fallback = true
		res.FallbackReason = "no pairs"
		if solveErr != nil {
			res.FallbackReason = solveErr.Error()
		}
		logger.Warn(FallbackWarning, "mode", mode, "reason", res.FallbackReason)
		observer.FallbackUsed(mode, res.FallbackReason)
		pairs = Identity(min(estimates.Len(), scaffolds.Len()))
	}

	session, err := NewSession(estimates, scaffolds, pairs, WithLogger(logger), WithObserver(observer))
	if err != nil {
		return nil, err
	}
	res.Session = session
	return res, nil
}

// Prepare validates both series, applies the scaffold filters of opts and
// sorts both series by descending size. Sessions restored from saved pairs
// must be opened on prepared series.
func Prepare(estimates, scaffolds series.Series, opts Options) (series.Series, series.Series, error) {
	if err := estimates.Validate(); err != nil {
		return series.Series{}, series.Series{}, err
	}
	if err := scaffolds.Validate(); err != nil {
		return series.Series{}, series.Series{}, err
	}
	if opts.MinScaffoldSize > 0 {
		scaffolds = scaffolds.AtLeast(float64(opts.MinScaffoldSize))
	}
	scaffolds = scaffolds.SortedDescending()
	if opts.MaxScaffolds > 0 {
		scaffolds = scaffolds.Head(opts.MaxScaffolds)
	}
	if scaffolds.Len() == 0 {
		return series.Series{}, series.Series{}, fmt.Errorf("no scaffold of at least %d: %w", opts.MinScaffoldSize, errs.ErrInvalidInput)
	}
	return estimates.SortedDescending(), scaffolds, nil
}

// matchByName inner-joins estimates and scaffolds on their IDs, in estimate
// order.
func matchByName(estimates, scaffolds series.Series) []Pair {
	byID := make(map[string][]int, scaffolds.Len())
	for j, e := range scaffolds.Entries {
		byID[e.ID] = append(byID[e.ID], j)
	}
	var pairs []Pair
	for i, e := range estimates.Entries {
		for _, j := range byID[e.ID] {
			pairs = append(pairs, Pair{Estimate: i, Scaffold: j})
		}
	}
	return pairs
}
