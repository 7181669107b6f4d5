// Package series holds named size series (scaffold sizes and chromosome
// estimates) and reads them from FASTA index and TSV files.
package series

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"

	"kics/internal/errs"
)

// Conventional series names.
const (
	ScaffoldSizes       = "scaffold_sizes"
	ChromosomeEstimates = "chromosome_estimates"
)

// Entry is a single named size.
type Entry struct {
	ID   string  `json:"id"`
	Size float64 `json:"size"`
}

// Series is an ordered list of sizes, each identified by an ID.
type Series struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// New creates a series from parallel ID and size slices.
func New(name string, ids []string, sizes []float64) (Series, error) {
	if len(ids) != len(sizes) {
		return Series{}, fmt.Errorf("%d ids for %d sizes: %w", len(ids), len(sizes), errs.ErrInvalidInput)
	}
	s := Series{Name: name, Entries: make([]Entry, len(ids))}
	for i := range ids {
		s.Entries[i] = Entry{ID: ids[i], Size: sizes[i]}
	}
	return s, nil
}

// FromSizes creates a series whose IDs are the positional indices.
func FromSizes(name string, sizes []float64) Series {
	s := Series{Name: name, Entries: make([]Entry, len(sizes))}
	for i, size := range sizes {
		s.Entries[i] = Entry{ID: strconv.Itoa(i), Size: size}
	}
	return s
}

// Len returns the number of entries.
func (s Series) Len() int {
	return len(s.Entries)
}

// Sizes returns the sizes in order.
func (s Series) Sizes() []float64 {
	out := make([]float64, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Size
	}
	return out
}

// IDs returns the IDs in order.
func (s Series) IDs() []string {
	out := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.ID
	}
	return out
}

// Total returns the sum of all sizes.
func (s Series) Total() float64 {
	var total float64
	for _, e := range s.Entries {
		total += e.Size
	}
	return total
}

// Validate checks that the series is non-empty and all sizes are positive
// finite numbers.
func (s Series) Validate() error {
	if len(s.Entries) == 0 {
		return fmt.Errorf("series %q is empty: %w", s.Name, errs.ErrInvalidInput)
	}
	for i, e := range s.Entries {
		if !(e.Size > 0) || math.IsInf(e.Size, 0) {
			return fmt.Errorf("series %q: size %v of %q at %d is not positive: %w",
				s.Name, e.Size, e.ID, i, errs.ErrInvalidInput)
		}
	}
	return nil
}

// IsSortedDescending reports whether sizes are non-increasing.
func (s Series) IsSortedDescending() bool {
	for i := 1; i < len(s.Entries); i++ {
		if s.Entries[i].Size > s.Entries[i-1].Size {
			return false
		}
	}
	return true
}

// SortedDescending returns a copy sorted by size, largest first. Entries of
// equal size keep their relative order.
func (s Series) SortedDescending() Series {
	out := s.Clone()
	slices.SortStableFunc(out.Entries, func(a, b Entry) int {
		return cmp.Compare(b.Size, a.Size)
	})
	return out
}

// AtLeast returns a copy keeping only entries with Size >= minSize.
func (s Series) AtLeast(minSize float64) Series {
	out := Series{Name: s.Name}
	for _, e := range s.Entries {
		if e.Size >= minSize {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// Head returns a copy of the first n entries. n beyond Len returns the
// whole series.
func (s Series) Head(n int) Series {
	out := s.Clone()
	if n >= 0 && n < len(out.Entries) {
		out.Entries = out.Entries[:n]
	}
	return out
}

// Index returns the position of the first entry with the given ID.
func (s Series) Index(id string) (int, bool) {
	for i, e := range s.Entries {
		if e.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Clone returns a deep copy.
func (s Series) Clone() Series {
	return Series{Name: s.Name, Entries: slices.Clone(s.Entries)}
}
