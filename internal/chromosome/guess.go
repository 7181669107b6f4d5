package chromosome

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"kics/internal/errs"
	"kics/pkg/geometry"
)

// DefaultRelMin is the minimum ratio between consecutive sorted gaps at
// which the smaller gap is treated as an intra-pair distance.
const DefaultRelMin = 4

// Guesser assigns labels to chromosome bounding boxes by grouping them into
// rows and pairing nearby boxes within each row.
type Guesser struct {
	RelMin int
	Logger *slog.Logger
}

// NewGuesser returns a Guesser with default parameters.
func NewGuesser() *Guesser {
	return &Guesser{RelMin: DefaultRelMin, Logger: slog.Default()}
}

// GuessLabels labels boxes with the default Guesser.
func GuessLabels(boxes []geometry.BBox) ([]Label, error) {
	return NewGuesser().Guess(boxes)
}

// Guess returns one label per box, in input order.
//
// Boxes whose vertical extents touch or overlap form a row. Within a row,
// boxes are ordered left to right and split into clusters wherever the
// horizontal gap exceeds a cutoff derived from the sorted gap list. Each
// cluster receives the next chromosome number; members get consecutive
// letters. A cluster with more members than letters is an error.
func (g *Guesser) Guess(boxes []geometry.BBox) ([]Label, error) {
	if len(boxes) == 0 {
		return nil, fmt.Errorf("no bounding boxes: %w", errs.ErrInvalidInput)
	}
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}
	relMin := g.RelMin
	if relMin <= 0 {
		relMin = DefaultRelMin
	}

	rows := groupRows(boxes)
	logger.Debug("grouped boxes into rows", "boxes", len(boxes), "rows", len(rows))

	labels := make([]Label, len(boxes))
	major := 1
	for r, members := range rows {
		clusters := clusterRow(boxes, members, relMin, logger)
		for c, cluster := range clusters {
			for minor, idx := range cluster {
				l, err := NewPlacedLabel(major, minor, r, c)
				if err != nil {
					return nil, fmt.Errorf("cluster %d of row %d has %d members: %w", c, r, len(cluster), err)
				}
				labels[idx] = l
			}
			major++
		}
	}
	return labels, nil
}

// groupRows merges boxes with touching vertical extents. Rows are returned
// top to bottom as lists of box indices.
func groupRows(boxes []geometry.BBox) [][]int {
	ivs := make([]geometry.IndexedInterval, len(boxes))
	for i, b := range boxes {
		ivs[i] = geometry.IndexedInterval{Interval: b.Rows(), Index: i}
	}
	slices.SortFunc(ivs, geometry.IndexedInterval.Compare)

	span := ivs[0].Interval
	rows := [][]int{{ivs[0].Index}}
	for _, iv := range ivs[1:] {
		if span.Overlaps(iv.Interval) {
			span = span.Union(iv.Interval)
			rows[len(rows)-1] = append(rows[len(rows)-1], iv.Index)
			continue
		}
		span = iv.Interval
		rows = append(rows, []int{iv.Index})
	}
	return rows
}

// clusterRow splits one row into left-to-right clusters of box indices.
func clusterRow(boxes []geometry.BBox, members []int, relMin int, logger *slog.Logger) [][]int {
	ivs := make([]geometry.IndexedInterval, len(members))
	for i, idx := range members {
		ivs[i] = geometry.IndexedInterval{Interval: boxes[idx].Cols(), Index: idx}
	}
	slices.SortFunc(ivs, geometry.IndexedInterval.Compare)

	gaps := make([]int, 0, len(ivs))
	for i := 1; i < len(ivs); i++ {
		gaps = append(gaps, ivs[i].Begin-ivs[i-1].End)
	}
	cutoff, ok := gapCutoff(gaps, relMin)
	logger.Debug("row gaps", "gaps", gaps, "cutoff", cutoff, "has_cutoff", ok)

	clusters := [][]int{{ivs[0].Index}}
	for i := 1; i < len(ivs); i++ {
		if ok && ivs[i].Begin-ivs[i-1].End <= cutoff {
			clusters[len(clusters)-1] = append(clusters[len(clusters)-1], ivs[i].Index)
			continue
		}
		clusters = append(clusters, []int{ivs[i].Index})
	}
	return clusters
}

// gapCutoff returns the largest gap x1 that is followed, in sorted order, by
// a gap x2 with x1*relMin <= x2. It reports false if no such gap exists.
func gapCutoff(gaps []int, relMin int) (int, bool) {
	sorted := slices.Clone(gaps)
	slices.Sort(sorted)

	cutoff, found := math.MinInt, false
	for i := 1; i < len(sorted); i++ {
		x1, x2 := sorted[i-1], sorted[i]
		if x1*relMin <= x2 && x1 > cutoff {
			cutoff, found = x1, true
		}
	}
	return cutoff, found
}
