// Package geometry provides basic geometric types used throughout the application.
package geometry

// BBox is an axis-aligned bounding box in pixel coordinates.
// Max bounds are exclusive, matching connected-component statistics.
type BBox struct {
	RowMin int `json:"row_min"`
	ColMin int `json:"col_min"`
	RowMax int `json:"row_max"`
	ColMax int `json:"col_max"`
}

// NewBBox creates a new BBox from (row_min, col_min, row_max, col_max).
func NewBBox(rowMin, colMin, rowMax, colMax int) BBox {
	return BBox{RowMin: rowMin, ColMin: colMin, RowMax: rowMax, ColMax: colMax}
}

// Valid reports whether the minimum corner does not exceed the maximum corner.
func (b BBox) Valid() bool {
	return b.RowMin <= b.RowMax && b.ColMin <= b.ColMax
}

// Rows returns the vertical extent [RowMin, RowMax).
func (b BBox) Rows() Interval {
	return Interval{Begin: b.RowMin, End: b.RowMax}
}

// Cols returns the horizontal extent [ColMin, ColMax).
func (b BBox) Cols() Interval {
	return Interval{Begin: b.ColMin, End: b.ColMax}
}

// Width returns the horizontal size in pixels.
func (b BBox) Width() int {
	return b.ColMax - b.ColMin
}

// Height returns the vertical size in pixels.
func (b BBox) Height() int {
	return b.RowMax - b.RowMin
}

// Rect converts the box to an origin/size rectangle.
func (b BBox) Rect() RectInt {
	return RectInt{X: b.ColMin, Y: b.RowMin, Width: b.Width(), Height: b.Height()}
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BBox converts the rectangle to row/column bounds.
func (r RectInt) BBox() BBox {
	return BBox{RowMin: r.Y, ColMin: r.X, RowMax: r.Y + r.Height, ColMax: r.X + r.Width}
}

// Interval is a half-open integer range [Begin, End).
type Interval struct {
	Begin int `json:"begin"`
	End   int `json:"end"`
}

// Size returns End - Begin.
func (iv Interval) Size() int {
	return iv.End - iv.Begin
}

// Empty reports whether the interval contains no points.
func (iv Interval) Empty() bool {
	return iv.Begin >= iv.End
}

// Overlaps reports whether the intervals touch or overlap. Touching ends
// count: [0,10) and [10,20) overlap.
func (iv Interval) Overlaps(other Interval) bool {
	if iv.Begin > other.Begin {
		return other.Overlaps(iv)
	}
	return other.Begin <= iv.End
}

// OverlapsStrict reports whether the intervals share at least one point.
// Empty intervals never overlap.
func (iv Interval) OverlapsStrict(other Interval) bool {
	if iv.Begin > other.Begin {
		return other.OverlapsStrict(iv)
	}
	return other.Begin < iv.End && !iv.Empty() && !other.Empty()
}

// Union returns the smallest interval containing both intervals.
func (iv Interval) Union(other Interval) Interval {
	return Interval{Begin: min(iv.Begin, other.Begin), End: max(iv.End, other.End)}
}

// IndexedInterval is an interval tagged with the position of the item it
// was derived from.
type IndexedInterval struct {
	Interval
	Index int
}

// Less orders by (Begin, End, Index).
func (a IndexedInterval) Less(b IndexedInterval) bool {
	if a.Begin != b.Begin {
		return a.Begin < b.Begin
	}
	if a.End != b.End {
		return a.End < b.End
	}
	return a.Index < b.Index
}

// Compare returns -1, 0 or +1 following the (Begin, End, Index) order.
func (a IndexedInterval) Compare(b IndexedInterval) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}
