package eca

import "slices"

// History is the append-only list of generations produced by one evolution
// run. Index 0 is the initial row. Accessors return copies so readers can
// never mutate the engine's rows.
type History struct {
	width int
	rows  [][]uint8
}

// maxPrealloc caps the row slots reserved up front; longer runs grow.
const maxPrealloc = 1 << 16

func newHistory(width, capacity int) *History {
	return &History{width: width, rows: make([][]uint8, 0, capacity)}
}

func (h *History) append(row []uint8) { h.rows = append(h.rows, row) }

// Len returns the number of generations.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.rows)
}

// Width returns the number of cells per row.
func (h *History) Width() int {
	if h == nil {
		return 0
	}
	return h.width
}

// Row returns a copy of generation i.
func (h *History) Row(i int) []uint8 { return slices.Clone(h.rows[i]) }

// At returns cell x of generation i.
func (h *History) At(x, i int) uint8 { return h.rows[i][x] }

// Last returns a copy of the final generation.
func (h *History) Last() []uint8 { return h.Row(len(h.rows) - 1) }

// CopyRow copies generation i into dst and returns the number of cells
// copied.
func (h *History) CopyRow(dst []uint8, i int) int { return copy(dst, h.rows[i]) }

// Rows returns a deep copy of every generation.
func (h *History) Rows() [][]uint8 {
	out := make([][]uint8, len(h.rows))
	for i, r := range h.rows {
		out[i] = slices.Clone(r)
	}
	return out
}

// Equal reports whether both histories hold identical generations.
func (h *History) Equal(o *History) bool {
	if h.Len() != o.Len() || h.Width() != o.Width() {
		return false
	}
	for i := range h.rows {
		if !slices.Equal(h.rows[i], o.rows[i]) {
			return false
		}
	}
	return true
}
