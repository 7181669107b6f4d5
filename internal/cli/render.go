package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"kics/internal/estimate"
	"kics/internal/matching"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// renderMatching prints the pairs of s with their similarity, followed by
// summary statistics.
func renderMatching(w io.Writer, s *matching.Session) error {
	corr := s.Correlation()
	pairs := s.Pairs()
	t := newTable("#", "chromosome", "chromosome_size", "scaffold", "scaffold_size", "similarity")
	for k, row := range s.Rows() {
		p := pairs[k]
		t.Row(
			strconv.Itoa(k),
			row.Chromosome,
			formatBP(row.ChromosomeSize),
			row.Scaffold,
			formatBP(row.ScaffoldSize),
			strconv.FormatFloat(corr.At(p.Estimate, p.Scaffold), 'f', 4, 64),
		)
	}
	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}

	st := s.Stats()
	summary := fmt.Sprintf("pairs: %d  assigned estimates: %d/%d  unmatched scaffolds: %d  mean score: %s  log correlation: %s",
		st.Pairs, st.AssignedEstimates, s.Estimates().Len(), st.UnmatchedScaffolds,
		formatScore(st.MeanSimilarity), formatScore(st.LogCorrelation))
	if _, err := fmt.Fprintln(w, summary); err != nil {
		return err
	}
	if st.SharedScaffolds > 0 {
		_, err := fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d scaffolds are matched more than once", st.SharedScaffolds)))
		return err
	}
	return nil
}

// renderRegions prints the region table. With a known pixel pitch the
// height of every region is also given in micrometers.
func renderRegions(w io.Writer, t *estimate.Table, micronsPerPixel float64) error {
	unit := "size (%)"
	if t.HasGenomeSize() {
		unit = "size (Mb)"
	}
	headers := []string{"id", "label", "row", "col", "count", "area", unit, "bbox"}
	if micronsPerPixel > 0 {
		headers = append(headers, "height (µm)")
	}
	tbl := newTable(headers...)
	for _, r := range t.Regions() {
		row, col := "", ""
		if l, ok := r.Tag.Label(); ok && l.Placed {
			row, col = strconv.Itoa(l.Row), strconv.Itoa(l.Col)
		}
		cells := []string{
			strconv.Itoa(r.ID),
			r.Tag.String(),
			row,
			col,
			strconv.Itoa(r.Count),
			strconv.Itoa(r.Area),
			strconv.FormatFloat(r.Size, 'f', 2, 64),
			fmt.Sprintf("(%d, %d, %d, %d)", r.BBox.RowMin, r.BBox.ColMin, r.BBox.RowMax, r.BBox.ColMax),
		}
		if micronsPerPixel > 0 {
			height := float64(r.BBox.RowMax-r.BBox.RowMin) * micronsPerPixel
			cells = append(cells, strconv.FormatFloat(height, 'f', 1, 64))
		}
		tbl.Row(cells...)
	}
	_, err := fmt.Fprintln(w, tbl.String())
	return err
}

func formatBP(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func formatScore(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
