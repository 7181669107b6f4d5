package geometry

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name       string
		a, b       Interval
		want       bool
		wantStrict bool
	}{
		{"disjoint", Interval{0, 10}, Interval{20, 30}, false, false},
		{"touching", Interval{0, 10}, Interval{10, 20}, true, false},
		{"nested", Interval{0, 30}, Interval{10, 20}, true, true},
		{"partial", Interval{0, 15}, Interval{10, 20}, true, true},
		{"empty inside", Interval{0, 30}, Interval{10, 10}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
			assert.Equal(t, tt.wantStrict, tt.a.OverlapsStrict(tt.b))
			assert.Equal(t, tt.wantStrict, tt.b.OverlapsStrict(tt.a))
		})
	}
}

func TestInterval_Union(t *testing.T) {
	assert.Equal(t, Interval{0, 30}, Interval{0, 10}.Union(Interval{5, 30}))
	assert.Equal(t, Interval{-5, 10}, Interval{0, 10}.Union(Interval{-5, 2}))
	assert.Equal(t, 10, Interval{0, 10}.Size())
	assert.True(t, Interval{3, 3}.Empty())
}

func TestIndexedInterval_Order(t *testing.T) {
	ivs := []IndexedInterval{
		{Interval{5, 9}, 0},
		{Interval{1, 4}, 2},
		{Interval{1, 4}, 1},
		{Interval{1, 3}, 3},
	}
	slices.SortFunc(ivs, IndexedInterval.Compare)

	var got []int
	for _, iv := range ivs {
		got = append(got, iv.Index)
	}
	assert.Equal(t, []int{3, 1, 2, 0}, got)
}

func TestBBox_RectRoundTrip(t *testing.T) {
	b := NewBBox(50, 364, 179, 423)
	r := b.Rect()

	assert.Equal(t, RectInt{X: 364, Y: 50, Width: 59, Height: 129}, r)
	assert.Equal(t, b, r.BBox())
	assert.Equal(t, Interval{50, 179}, b.Rows())
	assert.Equal(t, Interval{364, 423}, b.Cols())
	assert.True(t, b.Valid())
	assert.False(t, NewBBox(10, 0, 5, 0).Valid())
}
