package matching

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Row is one matched pair resolved to IDs and sizes.
type Row struct {
	Chromosome     string  `json:"chromosome"`
	ChromosomeSize float64 `json:"chromosome_size"`
	Scaffold       string  `json:"scaffold"`
	ScaffoldSize   float64 `json:"scaffold_size"`
}

// Rows returns the matching in pair order.
func (s *Session) Rows() []Row {
	rows := make([]Row, len(s.pairs))
	for k, p := range s.pairs {
		est, scaff := s.estimates.Entries[p.Estimate], s.scaffolds.Entries[p.Scaffold]
		rows[k] = Row{
			Chromosome:     est.ID,
			ChromosomeSize: est.Size,
			Scaffold:       scaff.ID,
			ScaffoldSize:   scaff.Size,
		}
	}
	return rows
}

// WriteCSV writes the matching with a header row.
func (s *Session) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"chromosome", "chromosome_size", "scaffold", "scaffold_size"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range s.Rows() {
		rec := []string{r.Chromosome, formatSize(r.ChromosomeSize), r.Scaffold, formatSize(r.ScaffoldSize)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatSize(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Bar is one scaffold stacked onto an estimate, spanning [Y0, Y1).
type Bar struct {
	Estimate int     `json:"estimate"`
	Scaffold int     `json:"scaffold"`
	Y0       float64 `json:"y0"`
	Y1       float64 `json:"y1"`
}

// StackedBars stacks the matched scaffolds of every estimate in pair order,
// starting at 1. Bars are grouped by ascending estimate index.
func (s *Session) StackedBars() []Bar {
	stacks := make([][]Bar, s.estimates.Len())
	for _, p := range s.pairs {
		y0 := 1.0
		if st := stacks[p.Estimate]; len(st) > 0 {
			y0 = st[len(st)-1].Y1
		}
		stacks[p.Estimate] = append(stacks[p.Estimate], Bar{
			Estimate: p.Estimate,
			Scaffold: p.Scaffold,
			Y0:       y0,
			Y1:       y0 + s.scaffolds.Entries[p.Scaffold].Size,
		})
	}
	var bars []Bar
	for _, st := range stacks {
		bars = append(bars, st...)
	}
	return bars
}

// Stats summarises the matching.
type Stats struct {
	Pairs              int     `json:"pairs"`
	AssignedEstimates  int     `json:"assigned_estimates"`
	UnmatchedScaffolds int     `json:"unmatched_scaffolds"`
	SharedScaffolds    int     `json:"shared_scaffolds"`
	MeanSimilarity     float64 `json:"mean_similarity"`
	// LogCorrelation is the Pearson correlation of log sizes over matched
	// pairs. It is NaN with fewer than two pairs.
	LogCorrelation float64 `json:"log_correlation"`
}

// Stats returns summary statistics of the current matching.
func (s *Session) Stats() Stats {
	st := Stats{
		Pairs:             len(s.pairs),
		AssignedEstimates: s.score.Assigned,
		MeanSimilarity:    s.score.Mean,
		LogCorrelation:    math.NaN(),
	}
	for _, n := range s.score.Selection {
		switch {
		case n == 0:
			st.UnmatchedScaffolds++
		case n > 1:
			st.SharedScaffolds++
		}
	}
	if len(s.pairs) >= 2 {
		x := make([]float64, len(s.pairs))
		y := make([]float64, len(s.pairs))
		for k, p := range s.pairs {
			x[k] = math.Log(s.estimates.Entries[p.Estimate].Size)
			y[k] = math.Log(s.scaffolds.Entries[p.Scaffold].Size)
		}
		st.LogCorrelation = stat.Correlation(x, y, nil)
	}
	return st
}
