package core

import (
	"fmt"
	"sort"
	"sync"
)

// Size describes the dimensions of a viewer grid.
type Size struct {
	W int
	H int
}

// Sim is the contract the live viewer drives: a fixed-size grid of cells
// advanced one tick at a time.
type Sim interface {
	Name() string
	Size() Size
	Reset(seed int64)
	Step()
	Cells() []uint8
}

// Factory constructs a Sim from key=value settings; nil means defaults.
type Factory func(cfg map[string]string) Sim

var (
	simsMu sync.RWMutex
	sims   = map[string]Factory{}
)

// Register adds a factory under name. Empty names, nil factories and
// duplicate names are rejected.
func Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("register sim %q: name and factory are required", name)
	}
	simsMu.Lock()
	defer simsMu.Unlock()
	if _, dup := sims[name]; dup {
		return fmt.Errorf("register sim %q: already registered", name)
	}
	sims[name] = f
	return nil
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	simsMu.RLock()
	defer simsMu.RUnlock()
	f, ok := sims[name]
	return f, ok
}

// Names lists registered sims in sorted order.
func Names() []string {
	simsMu.RLock()
	defer simsMu.RUnlock()
	out := make([]string, 0, len(sims))
	for name := range sims {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
