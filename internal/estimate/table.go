package estimate

import (
	"fmt"
	"slices"

	"kics/internal/chromosome"
	"kics/internal/errs"
	"kics/internal/series"
	"kics/pkg/geometry"
)

// DefaultTotal is the total that relative sizes add up to when no genome
// size is known, making them percentages.
const DefaultTotal = 100.0

// Region is one segmented object of a karyotype image.
type Region struct {
	ID    int           `json:"id"`
	Tag   Tag           `json:"tag"`
	Count int           `json:"count"`
	Area  int           `json:"area"`
	BBox  geometry.BBox `json:"bbox"`
	// Size is derived from Area; it is in Mb with a genome size and in
	// percent of the genome otherwise.
	Size float64 `json:"size"`
}

// Table holds regions and converts their areas into sizes. Sizes are
// proportional to area and scaled so that area/count summed over regions
// with a positive count equals the genome size.
type Table struct {
	regions    []Region
	genomeSize float64
}

// NewTable creates a table. genomeSize is in Mb; zero or less means unknown.
func NewTable(regions []Region, genomeSize float64) (*Table, error) {
	seen := make(map[int]bool, len(regions))
	for _, r := range regions {
		if err := checkRegion(r); err != nil {
			return nil, err
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate region id %d: %w", r.ID, errs.ErrInvalidInput)
		}
		seen[r.ID] = true
	}
	t := &Table{regions: slices.Clone(regions), genomeSize: genomeSize}
	t.updateSizes()
	return t, nil
}

// FromLabels builds a table from boxes, areas and labels of the same
// length, with counts derived from the labels.
func FromLabels(boxes []geometry.BBox, areas []int, labels []chromosome.Label, genomeSize float64) (*Table, error) {
	if len(boxes) != len(areas) || len(boxes) != len(labels) {
		return nil, fmt.Errorf("%d boxes, %d areas, %d labels: %w", len(boxes), len(areas), len(labels), errs.ErrInvalidInput)
	}
	regions := make([]Region, len(boxes))
	for i := range boxes {
		regions[i] = Region{ID: i + 1, Tag: LabelTag(labels[i]), Count: 1, Area: areas[i], BBox: boxes[i]}
	}
	t, err := NewTable(regions, genomeSize)
	if err != nil {
		return nil, err
	}
	t.UpdateCounts()
	return t, nil
}

// Len returns the number of regions.
func (t *Table) Len() int { return len(t.regions) }

// Regions returns a copy of the regions in table order.
func (t *Table) Regions() []Region { return slices.Clone(t.regions) }

// GenomeSize returns the genome size in Mb, or zero if unknown.
func (t *Table) GenomeSize() float64 { return t.genomeSize }

// HasGenomeSize reports whether a genome size is set.
func (t *Table) HasGenomeSize() bool { return t.genomeSize > 0 }

// SetGenomeSize sets the genome size in Mb and rescales sizes.
func (t *Table) SetGenomeSize(mb float64) {
	t.genomeSize = mb
	t.updateSizes()
}

// Region returns the region with the given ID.
func (t *Table) Region(id int) (Region, error) {
	i, err := t.index(id)
	if err != nil {
		return Region{}, err
	}
	return t.regions[i], nil
}

// SetTag retags a region and recounts regions per key.
func (t *Table) SetTag(id int, tag Tag) error {
	i, err := t.index(id)
	if err != nil {
		return err
	}
	t.regions[i].Tag = tag
	t.UpdateCounts()
	return nil
}

// SetCount overrides the count of a region. A count of zero excludes the
// region from scaling.
func (t *Table) SetCount(id, count int) error {
	if count < 0 {
		return fmt.Errorf("count %d must be at least 0: %w", count, errs.ErrInvalidInput)
	}
	i, err := t.index(id)
	if err != nil {
		return err
	}
	t.regions[i].Count = count
	t.updateSizes()
	return nil
}

// SetArea overrides the area of a region.
func (t *Table) SetArea(id, area int) error {
	if area < 0 {
		return fmt.Errorf("area %d: %w", area, errs.ErrInvalidInput)
	}
	i, err := t.index(id)
	if err != nil {
		return err
	}
	t.regions[i].Area = area
	t.updateSizes()
	return nil
}

// Insert appends a region. Its Size is ignored and recomputed.
func (t *Table) Insert(r Region) error {
	if err := checkRegion(r); err != nil {
		return err
	}
	if _, err := t.index(r.ID); err == nil {
		return fmt.Errorf("duplicate region id %d: %w", r.ID, errs.ErrInvalidInput)
	}
	t.regions = append(t.regions, r)
	t.updateSizes()
	return nil
}

// Remove deletes a region.
func (t *Table) Remove(id int) error {
	i, err := t.index(id)
	if err != nil {
		return err
	}
	t.regions = slices.Delete(t.regions, i, i+1)
	t.updateSizes()
	return nil
}

// UpdateCounts sets every region's count to the number of regions sharing
// its key.
func (t *Table) UpdateCounts() {
	counts := make(map[string]int, len(t.regions))
	for _, r := range t.regions {
		counts[r.Tag.Key()]++
	}
	for i := range t.regions {
		t.regions[i].Count = counts[t.regions[i].Tag.Key()]
	}
	t.updateSizes()
}

// Estimates averages region sizes per key, in order of first appearance,
// and converts them to base pairs. With a genome size, sizes are taken as
// Mb; otherwise as percent of scaffoldTotal.
func (t *Table) Estimates(scaffoldTotal float64) (series.Series, error) {
	if len(t.regions) == 0 {
		return series.Series{}, fmt.Errorf("no regions: %w", errs.ErrInvalidInput)
	}
	scale := 1e6
	if !t.HasGenomeSize() {
		if !(scaffoldTotal > 0) {
			return series.Series{}, fmt.Errorf("scaffold total %v is required without a genome size: %w",
				scaffoldTotal, errs.ErrInvalidInput)
		}
		scale = scaffoldTotal / DefaultTotal
	}

	type acc struct {
		total float64
		n     int
	}
	var keys []string
	sums := make(map[string]*acc)
	for _, r := range t.regions {
		k := r.Tag.Key()
		a, ok := sums[k]
		if !ok {
			a = &acc{}
			sums[k] = a
			keys = append(keys, k)
		}
		a.total += r.Size
		a.n++
	}

	s := series.Series{Name: series.ChromosomeEstimates, Entries: make([]series.Entry, len(keys))}
	for i, k := range keys {
		s.Entries[i] = series.Entry{ID: k, Size: sums[k].total / float64(sums[k].n) * scale}
	}
	return s, nil
}

func (t *Table) updateSizes() {
	total := DefaultTotal
	if t.HasGenomeSize() {
		total = t.genomeSize
	}
	var norm float64
	for _, r := range t.regions {
		if r.Count > 0 {
			norm += float64(r.Area) / float64(r.Count)
		}
	}
	for i := range t.regions {
		t.regions[i].Size = 0
		if t.regions[i].Count > 0 && norm > 0 {
			t.regions[i].Size = total / norm * float64(t.regions[i].Area)
		}
	}
}

func (t *Table) index(id int) (int, error) {
	i := slices.IndexFunc(t.regions, func(r Region) bool { return r.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("region %d: %w", id, errs.ErrIndex)
	}
	return i, nil
}

func checkRegion(r Region) error {
	if r.Area < 0 || r.Count < 0 {
		return fmt.Errorf("region %d: negative area or count: %w", r.ID, errs.ErrInvalidInput)
	}
	return nil
}
