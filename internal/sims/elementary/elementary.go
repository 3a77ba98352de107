// Package elementary drives a rule table as a scrolling viewer simulation:
// the newest generation is row 0 and older rows move down one per tick.
package elementary

import (
	"fmt"
	"strconv"

	"eca-morph/internal/config"
	"eca-morph/internal/core"
	"eca-morph/internal/eca"
	"eca-morph/internal/initstate"
	"eca-morph/internal/logging"
	"eca-morph/internal/rule"
)

// Name is the registry key.
const Name = "elementary"

// Elementary is one automaton shown as a w x h window of its history.
type Elementary struct {
	table *rule.Table
	cfg   config.Config

	ruleID int
	rule   rule.Rule
	w, h   int

	cur        []uint8
	row, next  []uint8
	generation int
	seed       int64
}

// New builds an automaton from cfg using table. The window is cfg.Size
// cells wide and cfg.Evolutions+1 rows tall.
func New(table *rule.Table, cfg config.Config) (*Elementary, error) {
	ec, err := cfg.EngineConfig()
	if err != nil {
		return nil, err
	}
	r, err := table.Lookup(ec.Rule)
	if err != nil {
		return nil, err
	}
	w, h := ec.Size, ec.Evolutions+1
	e := &Elementary{
		table:  table,
		cfg:    cfg,
		ruleID: ec.Rule,
		rule:   r,
		w:      w,
		h:      h,
		cur:    make([]uint8, w*h),
		row:    make([]uint8, w),
		next:   make([]uint8, w),
		seed:   ec.RandomSeed,
	}
	e.Reset(e.seed)
	return e, nil
}

// Name returns the simulation identifier.
func (e *Elementary) Name() string { return Name }

// Size returns the window dimensions.
func (e *Elementary) Size() core.Size { return core.Size{W: e.w, H: e.h} }

// Cells exposes the window buffer, newest row first.
func (e *Elementary) Cells() []uint8 { return e.cur }

// Generation reports how many steps ran since the last reset.
func (e *Elementary) Generation() int { return e.generation }

// Rule returns the active rule id.
func (e *Elementary) Rule() int { return e.ruleID }

// Reset clears the window and seeds row 0 with the configured initial row.
// seed feeds the uniform random initializer.
func (e *Elementary) Reset(seed int64) {
	e.seed = seed
	clear(e.cur)
	spec := e.cfg.Init
	method, err := initstate.ParseMethod(spec.Method)
	if err != nil {
		method = initstate.MethodSingleActive
	}
	initial, err := initstate.Build(initstate.Spec{
		Method:   method,
		Size:     e.w,
		Density:  spec.Density,
		Seed:     spec.Seed,
		Centered: spec.Centered,
	}, core.NewRNG(seed))
	if err != nil {
		logging.Logger().Warn("viewer init failed, using a single cell", "error", err)
		initial, _ = initstate.SingleActiveCell(e.w, true)
	}
	copy(e.row, initial)
	copy(e.cur[:e.w], e.row)
	e.generation = 0
}

// Step computes the next generation and scrolls the window down one row.
func (e *Elementary) Step() {
	eca.Step(e.rule, e.row, e.next)
	e.row, e.next = e.next, e.row
	copy(e.cur[e.w:], e.cur[:e.w*(e.h-1)])
	copy(e.cur[:e.w], e.row)
	e.generation++
}

// Parameters reports the values shown on the HUD.
func (e *Elementary) Parameters() core.ParameterSnapshot {
	ones := 0
	for _, v := range e.row {
		ones += int(v)
	}
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{Name: "Run", Params: []core.Parameter{
			{Key: "rule", Label: "Rule", Type: core.ParamTypeInt, Value: strconv.Itoa(e.ruleID)},
			{Key: "generation", Label: "Generation", Type: core.ParamTypeText, Value: strconv.Itoa(e.generation)},
			{Key: "ones", Label: "Live cells", Type: core.ParamTypeText, Value: fmt.Sprintf("%d/%d", ones, e.w)},
		}},
		{Name: "Init", Params: []core.Parameter{
			{Key: "init", Label: "Method", Type: core.ParamTypeText, Value: e.cfg.Init.Method},
			{Key: "density", Label: "Density", Type: core.ParamTypeFloat, Value: strconv.FormatFloat(e.cfg.Init.Density, 'f', 2, 64)},
		}},
	}}
}

// ParameterControls lists the HUD-adjustable values.
func (e *Elementary) ParameterControls() []core.ParameterControl {
	ids := e.table.IDs()
	lo, hi := 0, 0
	if len(ids) > 0 {
		lo, hi = ids[0], ids[len(ids)-1]
	}
	return []core.ParameterControl{
		{Key: "rule", Label: "Rule", Type: core.ParamTypeInt, Step: 1, Min: float64(lo), Max: float64(hi), HasMin: true, HasMax: true},
		{Key: "density", Label: "Density", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
	}
}

// SetIntParameter switches the rule. Ids missing from the table are skipped
// in the direction of travel so sparse tables stay navigable.
func (e *Elementary) SetIntParameter(key string, value int) bool {
	if key != "rule" {
		return false
	}
	ids := e.table.IDs()
	if len(ids) == 0 {
		return false
	}
	target := -1
	if value > e.ruleID {
		for _, id := range ids {
			if id >= value {
				target = id
				break
			}
		}
	} else {
		for i := len(ids) - 1; i >= 0; i-- {
			if ids[i] <= value {
				target = ids[i]
				break
			}
		}
	}
	if target < 0 || target == e.ruleID {
		return false
	}
	r, err := e.table.Lookup(target)
	if err != nil {
		return false
	}
	e.ruleID, e.rule = target, r
	e.cfg.Rule = target
	e.Reset(e.seed)
	return true
}

// SetFloatParameter changes the random initializer density and restarts.
func (e *Elementary) SetFloatParameter(key string, value float64) bool {
	if key != "density" || value < 0 || value > 1 {
		return false
	}
	e.cfg.Init.Density = value
	e.Reset(e.seed)
	return true
}

func init() {
	_ = core.Register(Name, func(m map[string]string) core.Sim {
		cfg := config.FromMap(m)
		e, err := New(rule.Full(), cfg)
		if err != nil {
			logging.Logger().Warn("viewer config rejected, using defaults", "error", err)
			e, _ = New(rule.Full(), config.Default())
		}
		return e
	})
}
