package scan

import (
	"slices"
	"sync"
)

// Histogram maps row indices to the segments found in that row. Rows are
// added one at a time; adding a row index again replaces the earlier result.
type Histogram struct {
	mu    sync.RWMutex
	width int
	rows  map[int]RowResult
	order []int
}

// NewHistogram returns an empty histogram for rows of the given width.
func NewHistogram(width int) *Histogram {
	return &Histogram{width: width, rows: make(map[int]RowResult)}
}

// Add inserts the result for one row.
func (h *Histogram) Add(res RowResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rows[res.Row]; !ok {
		i, _ := slices.BinarySearch(h.order, res.Row)
		h.order = slices.Insert(h.order, i, res.Row)
	}
	h.rows[res.Row] = res
}

// Width returns the row width the histogram was built for.
func (h *Histogram) Width() int { return h.width }

// Rows lists the row indices present, ascending.
func (h *Histogram) Rows() []int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.order)
}

// Segments returns a copy of the segments of row.
func (h *Histogram) Segments(row int) []Segment {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.rows[row].Segments)
}

// Isolated returns the isolated foreground columns of row.
func (h *Histogram) Isolated(row int) []int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.rows[row].Isolated)
}

// Results returns every row result in row order.
func (h *Histogram) Results() []RowResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]RowResult, 0, len(h.order))
	for _, row := range h.order {
		out = append(out, h.rows[row])
	}
	return out
}

// Export returns row -> ordered (start, end) pairs. Rows without segments
// map to an empty list.
func (h *Histogram) Export() map[int][][2]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[int][][2]int, len(h.rows))
	for row, res := range h.rows {
		pairs := make([][2]int, len(res.Segments))
		for i, s := range res.Segments {
			pairs[i] = s.Pair()
		}
		out[row] = pairs
	}
	return out
}

// Stats summarizes a histogram.
type Stats struct {
	Rows     int         `json:"rows"`
	Segments int         `json:"segments"`
	Wrapped  int         `json:"wrapped"`
	Isolated int         `json:"isolated"`
	Longest  int         `json:"longest"`
	MeanLen  float64     `json:"mean_length"`
	Lengths  map[int]int `json:"lengths"`
}

// Stats computes segment counts and the distribution of segment lengths.
func (h *Histogram) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	st := Stats{Rows: len(h.rows), Lengths: make(map[int]int)}
	total := 0
	for _, res := range h.rows {
		st.Isolated += len(res.Isolated)
		for _, s := range res.Segments {
			n := s.Len(h.width)
			st.Segments++
			total += n
			st.Lengths[n]++
			if s.Wraps() {
				st.Wrapped++
			}
			if n > st.Longest {
				st.Longest = n
			}
		}
	}
	if st.Segments > 0 {
		st.MeanLen = float64(total) / float64(st.Segments)
	}
	return st
}
