package morph

import (
	"strings"

	"eca-morph/internal/errs"
)

// Kernel is a flat structuring element. Nonzero entries take part in the
// neighborhood; the anchor is the element center (cols/2, rows/2).
type Kernel [][]uint8

// DefaultKernel is the 2x3 "T" element.
func DefaultKernel() Kernel {
	return Kernel{{0, 1, 0}, {1, 1, 1}}
}

// ParseKernel reads rows of '0'/'1' separated by ';' or newlines, e.g.
// "010;111".
func ParseKernel(s string) (Kernel, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultKernel(), nil
	}
	lines := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '\n' || r == '/' })
	k := make(Kernel, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		row := make([]uint8, 0, len(line))
		for _, c := range line {
			switch c {
			case '0':
				row = append(row, 0)
			case '1':
				row = append(row, 1)
			case ' ', ',':
			default:
				return nil, errs.Invalid("kernel", s, "kernel rows may only contain 0 and 1")
			}
		}
		k = append(k, row)
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

// Validate checks that k is rectangular and has at least one active element.
func (k Kernel) Validate() error {
	if len(k) == 0 || len(k[0]) == 0 {
		return errs.Invalid("kernel", k, "kernel must not be empty")
	}
	active := false
	for _, row := range k {
		if len(row) != len(k[0]) {
			return errs.Invalid("kernel", k, "kernel rows must share one width")
		}
		for _, v := range row {
			if v != 0 {
				active = true
			}
		}
	}
	if !active {
		return errs.Invalid("kernel", k, "kernel has no active element")
	}
	return nil
}

// Rows returns the kernel height.
func (k Kernel) Rows() int { return len(k) }

// Cols returns the kernel width.
func (k Kernel) Cols() int {
	if len(k) == 0 {
		return 0
	}
	return len(k[0])
}

// String renders k in the ParseKernel syntax.
func (k Kernel) String() string {
	var b strings.Builder
	for i, row := range k {
		if i > 0 {
			b.WriteByte(';')
		}
		for _, v := range row {
			if v != 0 {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
	}
	return b.String()
}

type offset struct{ dx, dy int }

func (k Kernel) offsets() []offset {
	ax, ay := k.Cols()/2, k.Rows()/2
	var out []offset
	for y, row := range k {
		for x, v := range row {
			if v != 0 {
				out = append(out, offset{dx: x - ax, dy: y - ay})
			}
		}
	}
	return out
}
