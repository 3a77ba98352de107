// Package rule maps rule identifiers to transition functions of a cell's
// three-cell neighborhood.
package rule

import (
	"slices"
	"sync"

	"eca-morph/internal/errs"
)

// Rule computes the next value of a cell from its left neighbor, itself and
// its right neighbor. Inputs and output are 0 or 1.
type Rule interface {
	Evaluate(left, center, right uint8) uint8
}

// Func adapts a plain function to the Rule interface. The result is masked to
// its lowest bit so formulas using complement stay binary.
type Func func(left, center, right uint8) uint8

// Evaluate calls f.
func (f Func) Evaluate(left, center, right uint8) uint8 { return f(left, center, right) & 1 }

// Wolfram returns the rule whose output for neighborhood (l,c,r) is bit
// l<<2|c<<1|r of code.
func Wolfram(code uint8) Rule { return wolfram(code) }

type wolfram uint8

func (w wolfram) Evaluate(left, center, right uint8) uint8 {
	idx := (left&1)<<2 | (center&1)<<1 | right&1
	return (uint8(w) >> idx) & 1
}

// Code returns the Wolfram code of r by evaluating it on all eight
// neighborhoods.
func Code(r Rule) uint8 {
	var code uint8
	for idx := uint8(0); idx < 8; idx++ {
		if r.Evaluate(idx>>2&1, idx>>1&1, idx&1)&1 == 1 {
			code |= 1 << idx
		}
	}
	return code
}

// Table is a registry of rules keyed by small non-negative integers.
type Table struct {
	mu    sync.RWMutex
	rules map[int]Rule
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{rules: make(map[int]Rule)}
}

// Register stores r under id, replacing any previous entry.
func (t *Table) Register(id int, r Rule) error {
	if id < 0 {
		return errs.Invalid("rule", id, "rule id must be non-negative")
	}
	if r == nil {
		return errs.Invalid("rule", id, "rule function is nil")
	}
	t.mu.Lock()
	t.rules[id] = r
	t.mu.Unlock()
	return nil
}

// Lookup returns the rule registered under id.
func (t *Table) Lookup(id int) (Rule, error) {
	t.mu.RLock()
	r, ok := t.rules[id]
	t.mu.RUnlock()
	if !ok {
		return nil, &errs.UnknownRuleError{ID: id}
	}
	return r, nil
}

// Apply evaluates the rule registered under id on one neighborhood.
func (t *Table) Apply(id int, left, center, right uint8) (uint8, error) {
	r, err := t.Lookup(id)
	if err != nil {
		return 0, err
	}
	return r.Evaluate(left, center, right) & 1, nil
}

// Has reports whether id is registered.
func (t *Table) Has(id int) bool {
	_, err := t.Lookup(id)
	return err == nil
}

// IDs lists registered ids in ascending order.
func (t *Table) IDs() []int {
	t.mu.RLock()
	ids := make([]int, 0, len(t.rules))
	for id := range t.rules {
		ids = append(ids, id)
	}
	t.mu.RUnlock()
	slices.Sort(ids)
	return ids
}
