package chromosome

import (
	"cmp"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kics/internal/errs"
	"kics/pkg/geometry"
)

func placed(major, minor, row, col int) Label {
	return Label{Major: major, Minor: minor, Row: row, Col: col, Placed: true}
}

var guessCases = []struct {
	name  string
	boxes []geometry.BBox
	want  []Label
}{
	{
		name: "first",
		boxes: []geometry.BBox{
			{50, 364, 179, 423}, {51, 551, 160, 612}, {52, 158, 171, 217},
			{52, 482, 163, 547}, {54, 84, 179, 153}, {54, 295, 183, 359},
			{101, 689, 141, 729}, {101, 735, 142, 775}, {219, 300, 285, 355},
			{219, 361, 285, 419}, {220, 86, 293, 148}, {221, 472, 287, 541},
			{221, 662, 278, 731}, {221, 908, 284, 961}, {222, 544, 288, 609},
			{223, 739, 276, 801}, {226, 153, 291, 210}, {226, 833, 275, 901},
			{348, 291, 402, 356}, {349, 909, 386, 967}, {350, 359, 401, 424},
			{350, 544, 408, 602}, {350, 671, 403, 730}, {351, 852, 390, 903},
			{352, 735, 403, 786}, {357, 480, 408, 541}, {358, 81, 404, 146},
			{358, 153, 407, 216}, {458, 677, 507, 728}, {461, 909, 503, 955},
			{462, 545, 507, 592}, {463, 360, 500, 411}, {465, 734, 501, 777},
			{466, 863, 506, 902}, {467, 492, 505, 537}, {469, 144, 512, 198},
			{470, 292, 507, 353}, {471, 87, 508, 140}, {552, 675, 634, 726},
			{556, 738, 638, 789}, {567, 933, 596, 972}, {568, 139, 605, 188},
			{568, 876, 597, 915}, {570, 96, 609, 134}, {574, 322, 601, 351},
			{574, 356, 596, 385},
		},
		want: []Label{
			placed(1, 0, 0, 0), placed(1, 1, 0, 0), placed(2, 0, 0, 1),
			placed(2, 1, 0, 1), placed(3, 0, 0, 2), placed(3, 1, 0, 2),
			placed(4, 0, 0, 3), placed(4, 1, 0, 3), placed(5, 0, 1, 0),
			placed(5, 1, 1, 0), placed(6, 0, 1, 1), placed(6, 1, 1, 1),
			placed(7, 0, 1, 2), placed(7, 1, 1, 2), placed(8, 0, 1, 3),
			placed(8, 1, 1, 3), placed(9, 0, 1, 4), placed(9, 1, 1, 4),
			placed(10, 0, 2, 0), placed(10, 1, 2, 0), placed(11, 0, 2, 1),
			placed(11, 1, 2, 1), placed(12, 0, 2, 2), placed(12, 1, 2, 2),
			placed(13, 0, 2, 3), placed(13, 1, 2, 3), placed(14, 0, 2, 4),
			placed(14, 1, 2, 4), placed(15, 0, 3, 0), placed(15, 1, 3, 0),
			placed(16, 0, 3, 1), placed(16, 1, 3, 1), placed(17, 0, 3, 2),
			placed(17, 1, 3, 2), placed(18, 0, 3, 3), placed(18, 1, 3, 3),
			placed(19, 0, 3, 4), placed(19, 1, 3, 4), placed(20, 0, 4, 0),
			placed(20, 1, 4, 0), placed(21, 0, 4, 1), placed(21, 1, 4, 1),
			placed(22, 0, 4, 2), placed(22, 1, 4, 2), placed(23, 0, 4, 3),
			placed(23, 1, 4, 3),
		},
	},
	{
		name: "human1",
		boxes: []geometry.BBox{
			{25, 46, 302, 97}, {30, 104, 254, 216}, {35, 392, 249, 483},
			{56, 338, 282, 433}, {56, 1670, 276, 1718}, {59, 1369, 248, 1428},
			{62, 635, 322, 698}, {63, 1436, 259, 1493}, {68, 701, 239, 799},
			{69, 1717, 226, 1787}, {452, 71, 641, 114}, {457, 112, 665, 180},
			{470, 380, 657, 417}, {484, 1577, 631, 1642}, {487, 651, 640, 700},
			{492, 423, 655, 467}, {496, 995, 638, 1046}, {496, 1898, 641, 1950},
			{499, 1830, 649, 1893}, {504, 701, 634, 776}, {506, 1251, 650, 1294},
			{513, 1296, 658, 1337}, {514, 936, 641, 1002}, {523, 1533, 639, 1597},
			{920, 361, 1043, 410}, {926, 57, 1049, 123}, {926, 665, 1049, 697},
			{935, 1248, 1036, 1287}, {936, 125, 1042, 201}, {936, 1298, 1032, 1333},
			{937, 419, 1014, 500}, {937, 705, 1043, 739}, {941, 1902, 1037, 1933},
			{942, 1857, 1040, 1892}, {946, 1536, 1039, 1593}, {951, 1602, 1049, 1647},
			{1269, 1845, 1415, 1897}, {1305, 1906, 1368, 1935}, {1309, 704, 1396, 739},
			{1313, 665, 1389, 694}, {1326, 423, 1408, 454}, {1332, 387, 1413, 412},
			{1342, 1595, 1416, 1634}, {1358, 1560, 1420, 1591}, {1360, 1298, 1433, 1329},
			{1377, 1251, 1433, 1290},
		},
		want: []Label{
			placed(1, 0, 0, 0), placed(1, 1, 0, 0), placed(2, 0, 0, 1),
			placed(2, 1, 0, 1), placed(3, 0, 0, 2), placed(3, 1, 0, 2),
			placed(4, 0, 0, 3), placed(4, 1, 0, 3), placed(5, 0, 0, 4),
			placed(5, 1, 0, 4), placed(6, 0, 1, 0), placed(6, 1, 1, 0),
			placed(7, 0, 1, 1), placed(7, 1, 1, 1), placed(8, 0, 1, 2),
			placed(8, 1, 1, 2), placed(9, 0, 1, 3), placed(9, 1, 1, 3),
			placed(10, 0, 1, 4), placed(10, 1, 1, 4), placed(11, 0, 1, 5),
			placed(11, 1, 1, 5), placed(12, 0, 1, 6), placed(12, 1, 1, 6),
			placed(13, 0, 2, 0), placed(13, 1, 2, 0), placed(14, 0, 2, 1),
			placed(14, 1, 2, 1), placed(15, 0, 2, 2), placed(15, 1, 2, 2),
			placed(16, 0, 2, 3), placed(16, 1, 2, 3), placed(17, 0, 2, 4),
			placed(17, 1, 2, 4), placed(18, 0, 2, 5), placed(18, 1, 2, 5),
			placed(19, 0, 3, 0), placed(19, 1, 3, 0), placed(20, 0, 3, 1),
			placed(20, 1, 3, 1), placed(21, 0, 3, 2), placed(21, 1, 3, 2),
			placed(22, 0, 3, 3), placed(22, 1, 3, 3), placed(23, 0, 3, 4),
			placed(23, 1, 3, 4),
		},
	},
	{
		name: "human2",
		boxes: []geometry.BBox{
			{28, 169, 214, 219}, {37, 453, 227, 494}, {54, 912, 214, 950},
			{55, 654, 218, 691}, {55, 959, 203, 998}, {59, 71, 214, 159},
			{66, 698, 214, 747}, {72, 1236, 211, 1274}, {73, 376, 214, 440},
			{93, 1158, 197, 1229}, {323, 93, 463, 131}, {334, 41, 463, 84},
			{342, 438, 462, 469}, {346, 290, 463, 338}, {350, 667, 455, 709},
			{350, 1019, 463, 1054}, {351, 478, 463, 515}, {351, 617, 460, 656},
			{353, 1065, 463, 1099}, {355, 231, 461, 281}, {361, 868, 462, 918},
			{361, 1199, 462, 1239}, {376, 811, 462, 857}, {382, 1249, 446, 1304},
			{570, 284, 670, 318}, {573, 62, 671, 96}, {577, 552, 672, 589},
			{578, 103, 671, 138}, {587, 334, 672, 368}, {588, 965, 670, 999},
			{589, 773, 671, 807}, {592, 509, 672, 543}, {597, 731, 671, 764},
			{600, 1199, 670, 1230}, {605, 1240, 672, 1275}, {608, 1009, 671, 1054},
			{780, 1010, 896, 1043}, {830, 117, 894, 147}, {836, 310, 898, 344},
			{836, 1231, 897, 1263}, {837, 68, 896, 109}, {837, 350, 896, 382},
			{843, 768, 895, 799}, {843, 809, 896, 840}, {845, 579, 894, 611},
			{850, 539, 896, 572},
		},
		want: []Label{
			placed(1, 0, 0, 0), placed(1, 1, 0, 0), placed(2, 0, 0, 1),
			placed(2, 1, 0, 1), placed(3, 0, 0, 2), placed(3, 1, 0, 2),
			placed(4, 0, 0, 3), placed(4, 1, 0, 3), placed(5, 0, 0, 4),
			placed(5, 1, 0, 4), placed(6, 0, 1, 0), placed(6, 1, 1, 0),
			placed(7, 0, 1, 1), placed(7, 1, 1, 1), placed(8, 0, 1, 2),
			placed(8, 1, 1, 2), placed(9, 0, 1, 3), placed(9, 1, 1, 3),
			placed(10, 0, 1, 4), placed(10, 1, 1, 4), placed(11, 0, 1, 5),
			placed(11, 1, 1, 5), placed(12, 0, 1, 6), placed(12, 1, 1, 6),
			placed(13, 0, 2, 0), placed(13, 1, 2, 0), placed(14, 0, 2, 1),
			placed(14, 1, 2, 1), placed(15, 0, 2, 2), placed(15, 1, 2, 2),
			placed(16, 0, 2, 3), placed(16, 1, 2, 3), placed(17, 0, 2, 4),
			placed(17, 1, 2, 4), placed(18, 0, 2, 5), placed(18, 1, 2, 5),
			placed(19, 0, 3, 0), placed(19, 1, 3, 0), placed(20, 0, 3, 1),
			placed(20, 1, 3, 1), placed(21, 0, 3, 2), placed(21, 1, 3, 2),
			placed(22, 0, 3, 3), placed(22, 1, 3, 3), placed(23, 0, 3, 4),
			placed(24, 0, 3, 5),
		},
	},
}

func TestGuessLabels_Layouts(t *testing.T) {
	for _, tc := range guessCases {
		t.Run(tc.name, func(t *testing.T) {
			labels, err := GuessLabels(tc.boxes)
			require.NoError(t, err)
			require.Len(t, labels, len(tc.boxes))

			type item struct {
				label Label
				box   geometry.BBox
			}
			items := make([]item, len(labels))
			for i := range labels {
				items[i] = item{labels[i], tc.boxes[i]}
			}
			slices.SortStableFunc(items, func(a, b item) int {
				return cmp.Or(
					cmp.Compare(a.label.Row, b.label.Row),
					cmp.Compare(a.label.Col, b.label.Col),
					cmp.Compare(a.box.ColMin, b.box.ColMin),
				)
			})

			got := make([]Label, len(items))
			for i, it := range items {
				got[i] = it.label
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGuessLabels_Empty(t *testing.T) {
	_, err := GuessLabels(nil)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestGuessLabels_SingleBox(t *testing.T) {
	labels, err := GuessLabels([]geometry.BBox{{10, 10, 50, 30}})
	require.NoError(t, err)
	assert.Equal(t, []Label{placed(1, 0, 0, 0)}, labels)
}

func TestGuessLabels_NoCutoffKeepsBoxesApart(t *testing.T) {
	// Evenly spaced boxes have no dominant gap, so every box is its own chromosome.
	boxes := []geometry.BBox{
		{0, 0, 40, 10},
		{0, 20, 40, 30},
		{0, 40, 40, 50},
	}
	labels, err := GuessLabels(boxes)
	require.NoError(t, err)
	assert.Equal(t, []Label{placed(1, 0, 0, 0), placed(2, 0, 0, 1), placed(3, 0, 0, 2)}, labels)
}

func TestGuessLabels_PairsAndRows(t *testing.T) {
	boxes := []geometry.BBox{
		{0, 0, 40, 10},
		{0, 12, 40, 22},
		{0, 100, 40, 110},
		{0, 112, 40, 122},
		// Second row, listed out of order.
		{100, 50, 130, 60},
		{102, 0, 128, 10},
	}
	labels, err := GuessLabels(boxes)
	require.NoError(t, err)
	assert.Equal(t, []Label{
		placed(1, 0, 0, 0),
		placed(1, 1, 0, 0),
		placed(2, 0, 0, 1),
		placed(2, 1, 0, 1),
		placed(4, 0, 1, 1),
		placed(3, 0, 1, 0),
	}, labels)
}

func TestGuessLabels_RowsFromVerticalOverlap(t *testing.T) {
	boxes := []geometry.BBox{
		{0, 0, 10, 10},
		{0, 20, 10, 30},
		{50, 0, 60, 10},
	}
	labels, err := GuessLabels(boxes)
	require.NoError(t, err)
	rows := make([]int, len(labels))
	for i, l := range labels {
		rows[i] = l.Row
	}
	assert.Equal(t, []int{0, 0, 1}, rows)
}

// row returns n boxes one pixel apart followed by a box far to the right.
func row(n int) []geometry.BBox {
	boxes := make([]geometry.BBox, 0, n+1)
	for i := range n {
		boxes = append(boxes, geometry.NewBBox(0, i*11, 40, i*11+10))
	}
	end := n*11 - 1
	return append(boxes, geometry.NewBBox(0, end+200, 40, end+210))
}

func TestGuessLabels_ClusterSizeLimit(t *testing.T) {
	labels, err := GuessLabels(row(MaxMinor + 1))
	require.NoError(t, err)
	assert.Equal(t, placed(1, MaxMinor, 0, 0), labels[MaxMinor])
	assert.Equal(t, placed(2, 0, 0, 1), labels[MaxMinor+1])
	for _, l := range labels {
		_, err := ParseLabel(l.String())
		assert.NoError(t, err, "label %s", l)
	}

	_, err = GuessLabels(row(MaxMinor + 2))
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestGapCutoff(t *testing.T) {
	tests := []struct {
		name  string
		gaps  []int
		want  int
		found bool
	}{
		{"none", nil, 0, false},
		{"single", []int{5}, 0, false},
		{"even", []int{10, 10, 10}, 0, false},
		{"pairs", []int{2, 78, 2}, 2, true},
		{"largest qualifying", []int{1, 4, 5, 40}, 5, true},
		{"negative overlap", []int{-3, 50}, -3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := gapCutoff(tt.gaps, DefaultRelMin)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
