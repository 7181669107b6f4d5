// Package chromosome provides chromosome labels and guesses them from the
// layout of a karyotype image.
package chromosome

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"kics/internal/errs"
)

// MaxMinor is the largest sub-index, rendered as 'z'.
const MaxMinor = 25

var labelRe = regexp.MustCompile(`^0*([0-9]+)([a-z])$`)

// Label names a chromosome by a number and a letter, e.g. "07b". Row and
// Col record the layout position the label was derived from and are only
// meaningful when Placed is set.
type Label struct {
	Major  int  `json:"major"`
	Minor  int  `json:"minor"`
	Row    int  `json:"row,omitempty"`
	Col    int  `json:"col,omitempty"`
	Placed bool `json:"placed,omitempty"`
}

// NewLabel creates an unplaced label.
func NewLabel(major, minor int) (Label, error) {
	if major < 0 {
		return Label{}, fmt.Errorf("negative major %d: %w", major, errs.ErrInvalidInput)
	}
	if minor < 0 || minor > MaxMinor {
		return Label{}, fmt.Errorf("minor %d outside 0..%d: %w", minor, MaxMinor, errs.ErrInvalidInput)
	}
	return Label{Major: major, Minor: minor}, nil
}

// NewPlacedLabel creates a label carrying its row/column position.
func NewPlacedLabel(major, minor, row, col int) (Label, error) {
	l, err := NewLabel(major, minor)
	if err != nil {
		return Label{}, err
	}
	l.Row, l.Col, l.Placed = row, col, true
	return l, nil
}

// ParseLabel parses "<digits><letter>". Leading zeros are ignored.
func ParseLabel(s string) (Label, error) {
	m := labelRe.FindStringSubmatch(s)
	if m == nil {
		return Label{}, fmt.Errorf("invalid label %q: %w", s, errs.ErrParse)
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Label{}, fmt.Errorf("invalid label %q: %w", s, errs.ErrParse)
	}
	return Label{Major: major, Minor: int(m[2][0] - 'a')}, nil
}

// String renders the label with a zero-padded two-digit major.
func (l Label) String() string {
	return fmt.Sprintf("%02d%c", l.Major, rune('a'+l.Minor))
}

// Unplaced returns the label without its layout position.
func (l Label) Unplaced() Label {
	return Label{Major: l.Major, Minor: l.Minor}
}

// Equal reports whether both labels have the same fields.
func (l Label) Equal(other Label) bool {
	return l.Compare(other) == 0
}

// Compare orders by (Major, Minor, Row, Col). Unplaced labels sort before
// placed ones with the same number and letter.
func (l Label) Compare(other Label) int {
	if c := cmpInt(l.Major, other.Major); c != 0 {
		return c
	}
	if c := cmpInt(l.Minor, other.Minor); c != 0 {
		return c
	}
	if l.Placed != other.Placed {
		if !l.Placed {
			return -1
		}
		return 1
	}
	if !l.Placed {
		return 0
	}
	if c := cmpInt(l.Row, other.Row); c != 0 {
		return c
	}
	return cmpInt(l.Col, other.Col)
}

// Less reports whether l sorts before other.
func (l Label) Less(other Label) bool {
	return l.Compare(other) < 0
}

// EqualString compares the rendered label with s.
func (l Label) EqualString(s string) bool {
	return l.String() == s
}

// CompareString compares the rendered label with s lexicographically.
func (l Label) CompareString(s string) int {
	return strings.Compare(l.String(), s)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
