package matching

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kics/internal/series"
)

func exportSession(t *testing.T) *Session {
	t.Helper()
	est, err := series.New(series.ChromosomeEstimates, []string{"1", "2"}, []float64{300, 120.5})
	require.NoError(t, err)
	scaff, err := series.New(series.ScaffoldSizes, []string{"scf_a", "scf_b", "scf_c"}, []float64{200, 110, 90})
	require.NoError(t, err)
	s, err := NewSession(est, scaff, []Pair{{0, 0}, {1, 1}, {0, 2}})
	require.NoError(t, err)
	return s
}

func TestSession_WriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, exportSession(t).WriteCSV(&buf))

	assert.Equal(t,
		"chromosome,chromosome_size,scaffold,scaffold_size\n"+
			"1,300,scf_a,200\n"+
			"2,120.5,scf_b,110\n"+
			"1,300,scf_c,90\n",
		buf.String())
}

func TestSession_StackedBars(t *testing.T) {
	bars := exportSession(t).StackedBars()
	assert.Equal(t, []Bar{
		{Estimate: 0, Scaffold: 0, Y0: 1, Y1: 201},
		{Estimate: 0, Scaffold: 2, Y0: 201, Y1: 291},
		{Estimate: 1, Scaffold: 1, Y0: 1, Y1: 111},
	}, bars)
}

func TestSession_Stats(t *testing.T) {
	s := exportSession(t)
	st := s.Stats()
	assert.Equal(t, 3, st.Pairs)
	assert.Equal(t, 2, st.AssignedEstimates)
	assert.Equal(t, 0, st.UnmatchedScaffolds)
	assert.Equal(t, 0, st.SharedScaffolds)
	assert.InDelta(t, s.Score().Mean, st.MeanSimilarity, 1e-12)
	assert.False(t, math.IsNaN(st.LogCorrelation))

	_, err := s.AddMatching(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Stats().SharedScaffolds)

	_, err = s.DeleteMatchings(0, 1, 2, 3)
	require.NoError(t, err)
	st = s.Stats()
	assert.Equal(t, 3, st.UnmatchedScaffolds)
	assert.True(t, math.IsNaN(st.LogCorrelation))
	assert.True(t, math.IsNaN(st.MeanSimilarity))
}
