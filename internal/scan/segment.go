// Package scan finds maximal runs of a foreground value in each raster row,
// treating every row as a ring.
package scan

// Segment is one maximal run of foreground cells in a row, with inclusive
// bounds. Start > End marks a run that wraps from the row's right edge to its
// left edge. A row that is foreground everywhere is reported as (0, W-1).
type Segment struct {
	Row   int `json:"row"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Wraps reports whether the segment crosses the row boundary.
func (s Segment) Wraps() bool { return s.Start > s.End }

// Len returns the number of columns covered in a row of the given width.
func (s Segment) Len(width int) int {
	if s.Wraps() {
		return width - s.Start + s.End + 1
	}
	return s.End - s.Start + 1
}

// Contains reports whether column col lies inside the segment.
func (s Segment) Contains(col int) bool {
	if s.Wraps() {
		return col >= s.Start || col <= s.End
	}
	return col >= s.Start && col <= s.End
}

// Columns lists the covered columns in logical order, starting at Start.
func (s Segment) Columns(width int) []int {
	n := s.Len(width)
	cols := make([]int, n)
	for i := 0; i < n; i++ {
		cols[i] = (s.Start + i) % width
	}
	return cols
}

// Pair returns the (start, end) export form.
func (s Segment) Pair() [2]int { return [2]int{s.Start, s.End} }
