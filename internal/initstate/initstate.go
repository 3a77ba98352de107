// Package initstate builds generation-zero rows.
package initstate

import (
	"fmt"
	"math"
	"strings"

	"eca-morph/internal/core"
	"eca-morph/internal/errs"
)

// Method names an initialization strategy.
type Method string

const (
	MethodSingleActive     Method = "single_active_cell"
	MethodSingleInactive   Method = "single_inactive_cell"
	MethodUniformRandom    Method = "uniform_random"
	MethodSeedInsert       Method = "seed_insert"
	MethodSeedInsertOnOnes Method = "seed_insert_on_ones"
)

// Methods lists every supported method in presentation order.
func Methods() []Method {
	return []Method{MethodSingleActive, MethodSingleInactive, MethodUniformRandom, MethodSeedInsert, MethodSeedInsertOnOnes}
}

var aliases = map[string]Method{
	"single_cell":      MethodSingleActive,
	"single_cell_zero": MethodSingleInactive,
	"random":           MethodUniformRandom,
	"seed":             MethodSeedInsert,
	"seed_zero":        MethodSeedInsertOnOnes,
}

// ParseMethod accepts canonical method names and their short aliases.
func ParseMethod(s string) (Method, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range Methods() {
		if string(m) == s {
			return m, nil
		}
	}
	if m, ok := aliases[s]; ok {
		return m, nil
	}
	return "", errs.Invalid("init_method", s, "unknown initialization method")
}

// Spec carries every input any strategy may need.
type Spec struct {
	Method   Method
	Size     int
	Density  float64
	Seed     string
	Centered bool
}

// Build produces the row described by s. rng is only consulted by
// MethodUniformRandom and may be nil otherwise.
func Build(s Spec, rng *core.RNG) ([]uint8, error) {
	switch s.Method {
	case MethodSingleActive:
		return SingleActiveCell(s.Size, s.Centered)
	case MethodSingleInactive:
		return SingleInactiveCell(s.Size)
	case MethodUniformRandom:
		if rng == nil {
			rng = core.NewRNG(0)
		}
		return UniformRandom(s.Size, s.Density, rng)
	case MethodSeedInsert:
		return SeedInsert(s.Size, s.Seed, 0)
	case MethodSeedInsertOnOnes:
		return SeedInsert(s.Size, s.Seed, 1)
	default:
		return nil, errs.Invalid("init_method", s.Method, "unknown initialization method")
	}
}

// Validate checks s without building a row.
func (s Spec) Validate() error {
	if err := checkSize(s.Size); err != nil {
		return err
	}
	switch s.Method {
	case MethodSingleActive, MethodSingleInactive:
		return nil
	case MethodUniformRandom:
		return checkDensity(s.Density)
	case MethodSeedInsert, MethodSeedInsertOnOnes:
		_, err := ParseBits(s.Seed, s.Size)
		return err
	default:
		return errs.Invalid("init_method", s.Method, "unknown initialization method")
	}
}

// SingleActiveCell returns zeros with one 1 at index 0, or at size/2 when
// centered.
func SingleActiveCell(size int, centered bool) ([]uint8, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	row := make([]uint8, size)
	if centered {
		row[size/2] = 1
	} else {
		row[0] = 1
	}
	return row, nil
}

// SingleInactiveCell returns ones with a single 0 at size/2.
func SingleInactiveCell(size int) ([]uint8, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	row := filled(size, 1)
	row[size/2] = 0
	return row, nil
}

// UniformRandom sets each cell independently to 1 with probability density.
func UniformRandom(size int, density float64, rng *core.RNG) ([]uint8, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if err := checkDensity(density); err != nil {
		return nil, err
	}
	row := make([]uint8, size)
	rng.FillDensity(row, density)
	return row, nil
}

// SeedInsert fills a row with base and overwrites the centered window
// starting at (size-len(seed))/2 with the seed bits.
func SeedInsert(size int, seed string, base uint8) ([]uint8, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if base > 1 {
		return nil, errs.Invalid("base", base, "must be 0 or 1")
	}
	bits, err := ParseBits(seed, size)
	if err != nil {
		return nil, err
	}
	row := filled(size, base)
	pos := (size - len(bits)) / 2
	copy(row[pos:], bits)
	return row, nil
}

// ParseBits converts a string of '0' and '1' into cell values. A positive
// limit rejects strings longer than limit.
func ParseBits(s string, limit int) ([]uint8, error) {
	if limit > 0 && len(s) > limit {
		return nil, errs.Invalid("seed", s, fmt.Sprintf("length %d exceeds size %d", len(s), limit))
	}
	bits := make([]uint8, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			bits[i] = 1
		default:
			return nil, errs.Invalid("seed", s, fmt.Sprintf("character %q at %d is not a bit", s[i], i))
		}
	}
	return bits, nil
}

// FormatBits renders a row as a string of '0' and '1'.
func FormatBits(row []uint8) string {
	var b strings.Builder
	b.Grow(len(row))
	for _, v := range row {
		if v != 0 {
			b.WriteByte('1')
			continue
		}
		b.WriteByte('0')
	}
	return b.String()
}

func checkSize(size int) error {
	if size <= 0 {
		return errs.Invalid("size", size, "must be positive")
	}
	return nil
}

func checkDensity(density float64) error {
	if math.IsNaN(density) || density < 0 || density > 1 {
		return errs.Invalid("density", density, "must be within [0,1]")
	}
	return nil
}

func filled(size int, v uint8) []uint8 {
	row := make([]uint8, size)
	if v != 0 {
		for i := range row {
			row[i] = v
		}
	}
	return row
}
