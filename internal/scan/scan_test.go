package scan

import (
	"context"
	"math/rand/v2"
	"testing"

	"eca-morph/internal/eca"
	"eca-morph/internal/errs"
	"eca-morph/internal/initstate"
	"eca-morph/internal/raster"
	"eca-morph/internal/rule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRowCases(t *testing.T) {
	cases := []struct {
		name     string
		row      []uint8
		segments []Segment
		isolated []int
	}{
		{"wrapped run", []uint8{1, 1, 0, 1}, []Segment{{Start: 3, End: 1}}, nil},
		{"isolated point", []uint8{0, 1, 0}, nil, []int{1}},
		{"plain runs", []uint8{0, 1, 1, 0, 1, 1, 1, 0}, []Segment{{Start: 1, End: 2}, {Start: 4, End: 6}}, nil},
		{"edge run no wrap", []uint8{1, 1, 0, 0}, []Segment{{Start: 0, End: 1}}, nil},
		{"right edge run", []uint8{0, 0, 1, 1}, []Segment{{Start: 2, End: 3}}, nil},
		{"wrap of two singles", []uint8{1, 0, 0, 1}, []Segment{{Start: 3, End: 0}}, nil},
		{"all background", []uint8{0, 0, 0}, nil, nil},
		{"all foreground", []uint8{1, 1, 1, 1}, []Segment{{Start: 0, End: 3}}, nil},
		{"single cell foreground", []uint8{1}, nil, []int{0}},
		{"single cell background", []uint8{0}, nil, nil},
		{"mixed", []uint8{1, 0, 1, 1, 0, 1, 0, 0, 1, 1}, []Segment{{Start: 8, End: 0}, {Start: 2, End: 3}}, []int{5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := ScanRow(tc.row, 0, 1)
			require.NoError(t, err)
			assert.Equal(t, tc.segments, res.Segments)
			assert.Equal(t, tc.isolated, res.Isolated)
		})
	}
}

func TestScanRowBackgroundOne(t *testing.T) {
	res, err := ScanRow([]uint8{0, 0, 1, 0}, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, []Segment{{Row: 5, Start: 3, End: 1}}, res.Segments)
}

func TestScanRowZeroWidth(t *testing.T) {
	_, err := ScanRow(nil, 0, 1)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func TestScanRowTotality(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 0))
	for trial := 0; trial < 500; trial++ {
		w := 1 + rng.IntN(40)
		row := make([]uint8, w)
		for i := range row {
			row[i] = uint8(rng.IntN(2))
		}
		res, err := ScanRow(row, trial, 1)
		require.NoError(t, err)

		seen := make([]int, w)
		for _, s := range res.Segments {
			require.GreaterOrEqual(t, s.Len(w), 2)
			for _, c := range s.Columns(w) {
				require.Equal(t, uint8(1), row[c], "segment column must be foreground")
				seen[c]++
			}
			before := (s.Start - 1 + w) % w
			after := (s.End + 1) % w
			if s.Len(w) < w {
				assert.Equal(t, uint8(0), row[before], "segment must be maximal on the left")
				assert.Equal(t, uint8(0), row[after], "segment must be maximal on the right")
			}
		}
		for _, c := range res.Isolated {
			require.Equal(t, uint8(1), row[c])
			seen[c]++
		}
		for c := range row {
			if row[c] == 0 {
				seen[c]++
			}
		}
		for c, n := range seen {
			require.Equal(t, 1, n, "row %v column %d counted %d times", row, c, n)
		}

		again, err := ScanRow(row, trial, 1)
		require.NoError(t, err)
		assert.Equal(t, res, again, "rescan must be identical")
	}
}

func TestScanRowLongRunIsIterative(t *testing.T) {
	row := make([]uint8, 1<<20)
	for i := range row {
		row[i] = 1
	}
	row[len(row)/2] = 0
	res, err := ScanRow(row, 0, 1)
	require.NoError(t, err)
	require.Len(t, res.Segments, 1)
	assert.True(t, res.Segments[0].Wraps())
	assert.Equal(t, len(row)-1, res.Segments[0].Len(len(row)))
}

func TestScanRasterSequentialMatchesParallel(t *testing.T) {
	e := eca.New(rule.Default())
	require.NoError(t, e.Configure(eca.Config{
		Rule: 22, Size: 50, Evolutions: 25,
		Init: initstate.Spec{Method: initstate.MethodSingleActive, Centered: true},
	}))
	h, err := e.Evolution(context.Background(), nil)
	require.NoError(t, err)
	r := raster.FromHistory(h)

	seq, err := Scan(context.Background(), r, Options{Foreground: 1})
	require.NoError(t, err)
	par, err := Scan(context.Background(), r, Options{Foreground: 1, Workers: 8})
	require.NoError(t, err)

	assert.Equal(t, seq.Export(), par.Export())
	assert.Equal(t, seq.Results(), par.Results())
	assert.Len(t, seq.Rows(), 26)
	assert.Equal(t, []int{25}, seq.Isolated(0), "generation zero is a single isolated cell")
}

func TestHistogramAddIsIdempotent(t *testing.T) {
	h := NewHistogram(4)
	res, err := ScanRow([]uint8{1, 1, 0, 1}, 2, 1)
	require.NoError(t, err)
	h.Add(res)
	h.Add(res)
	other, err := ScanRow([]uint8{0, 1, 1, 0}, 0, 1)
	require.NoError(t, err)
	h.Add(other)

	assert.Equal(t, []int{0, 2}, h.Rows())
	assert.Equal(t, map[int][][2]int{0: {{1, 2}}, 2: {{3, 1}}}, h.Export())

	st := h.Stats()
	assert.Equal(t, 2, st.Segments)
	assert.Equal(t, 1, st.Wrapped)
	assert.Equal(t, 3, st.Longest)
	assert.InDelta(t, 2.5, st.MeanLen, 1e-9)
	assert.Equal(t, map[int]int{2: 1, 3: 1}, st.Lengths)
}

func TestScanCancelled(t *testing.T) {
	bits, err := raster.NewBits([][]uint8{{1, 1, 0}})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Scan(ctx, bits, Options{Foreground: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSegmentHelpers(t *testing.T) {
	s := Segment{Start: 3, End: 1}
	assert.True(t, s.Wraps())
	assert.Equal(t, 3, s.Len(4))
	assert.Equal(t, []int{3, 0, 1}, s.Columns(4))
	assert.True(t, s.Contains(0))
	assert.False(t, s.Contains(2))
	assert.Equal(t, [2]int{3, 1}, s.Pair())
}
