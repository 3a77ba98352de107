package rule

// Formulas for the rules studied most often, written as Boolean expressions of
// the left (p), center (q) and right (r) cells.
var formulas = map[int]Func{
	18:  func(p, q, r uint8) uint8 { return ^q & (p ^ r) },
	22:  func(p, q, r uint8) uint8 { return (p ^ q ^ r) ^ (p & q & r) },
	26:  func(p, q, r uint8) uint8 { return p ^ (r | (p & q)) },
	30:  func(p, q, r uint8) uint8 { return p ^ (q | r) },
	54:  func(p, q, r uint8) uint8 { return q ^ (p | r) },
	60:  func(p, q, r uint8) uint8 { return p ^ q },
	90:  func(p, q, r uint8) uint8 { return p ^ r },
	94:  func(p, q, r uint8) uint8 { return (q &^ p) | (p ^ r) },
	105: func(p, q, r uint8) uint8 { return ^(p ^ q ^ r) },
	106: func(p, q, r uint8) uint8 { return r ^ (p & q) },
	110: func(p, q, r uint8) uint8 { return (q &^ p) | (q ^ r) },
	122: func(p, q, r uint8) uint8 { return (p | r) &^ (p & q & r) },
	126: func(p, q, r uint8) uint8 { return (p ^ q) | (p ^ r) },
	133: func(p, q, r uint8) uint8 { return ^(p ^ r) & (q | ^p) },
	146: func(p, q, r uint8) uint8 { return (p | r) & (p ^ q ^ r) },
	150: func(p, q, r uint8) uint8 { return p ^ q ^ r },
	154: func(p, q, r uint8) uint8 { return r ^ (p &^ q) },
	164: func(p, q, r uint8) uint8 { return p ^ r ^ (p | q | r) },
	195: func(p, q, r uint8) uint8 { return ^(p ^ q) },
}

// Default returns a table holding every catalog formula.
func Default() *Table {
	t := NewTable()
	for id, f := range formulas {
		_ = t.Register(id, f)
	}
	return t
}

// Full returns the catalog formulas plus every remaining Wolfram code 0..255.
func Full() *Table {
	t := Default()
	for code := 0; code < 256; code++ {
		if !t.Has(code) {
			_ = t.Register(code, Wolfram(uint8(code)))
		}
	}
	return t
}

// CatalogIDs lists the ids that have a hand-written formula.
func CatalogIDs() []int {
	return Default().IDs()
}
