// Package ui draws the viewer's parameter panel and segment overlay.
package ui

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"

	"eca-morph/internal/core"
)

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	infoSpacing    = 36
	controlsTop    = panelPadding + headerBaseline + 14
	emptyValue     = "--"
)

type controlState struct {
	control core.ParameterControl
	value   string

	intValue   int
	floatValue float64
	hasValue   bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

// Controls holds the adjustable parameters of a sim and the panel layout of
// their +/- buttons. It has no drawing dependencies.
type Controls struct {
	states      []controlState
	intSetter   core.IntParameterSetter
	floatSetter core.FloatParameterSetter
	width       int
}

// NewControls collects the controls sim exposes and lays them out in a
// panel of the given width.
func NewControls(sim core.Sim, width int) *Controls {
	c := &Controls{width: width}
	if provider, ok := sim.(core.ParameterControlsProvider); ok {
		for _, ctrl := range provider.ParameterControls() {
			c.states = append(c.states, controlState{control: ctrl, value: emptyValue})
		}
	}
	if setter, ok := sim.(core.IntParameterSetter); ok {
		c.intSetter = setter
	}
	if setter, ok := sim.(core.FloatParameterSetter); ok {
		c.floatSetter = setter
	}
	c.layout()
	return c
}

// Len returns the number of controls.
func (c *Controls) Len() int { return len(c.states) }

// Value returns the display string of control i.
func (c *Controls) Value(i int) string { return c.states[i].value }

// Refresh parses the displayed values from snap.
func (c *Controls) Refresh(snap core.ParameterSnapshot) {
	for i := range c.states {
		st := &c.states[i]
		st.hasValue = false
		st.value = emptyValue
		param, ok := snap.Lookup(st.control.Key)
		if !ok {
			continue
		}
		switch st.control.Type {
		case core.ParamTypeInt:
			v, err := strconv.Atoi(param.Value)
			if err != nil {
				continue
			}
			st.intValue, st.floatValue = v, float64(v)
			st.value = strconv.Itoa(v)
			st.hasValue = true
		case core.ParamTypeFloat:
			v, err := strconv.ParseFloat(param.Value, 64)
			if err != nil {
				continue
			}
			st.floatValue = v
			st.value = formatFloat(st.control, v)
			st.hasValue = true
		}
	}
}

// HitTest maps a panel-relative point to a control index and direction.
func (c *Controls) HitTest(x, y int) (int, int, bool) {
	for i := range c.states {
		st := &c.states[i]
		if !st.hasValue {
			continue
		}
		if pointInRect(x, y, st.minusRect) {
			return i, -1, true
		}
		if pointInRect(x, y, st.plusRect) {
			return i, 1, true
		}
	}
	return 0, 0, false
}

// target computes the clamped value one step away in direction dir and
// reports whether it differs from the current value.
func (c *Controls) target(st *controlState, dir int) (int, float64, bool) {
	switch st.control.Type {
	case core.ParamTypeInt:
		if c.intSetter == nil {
			return 0, 0, false
		}
		step := max(int(math.Round(st.control.Step)), 1)
		t := st.intValue + dir*step
		if st.control.HasMin {
			t = max(t, int(math.Round(st.control.Min)))
		}
		if st.control.HasMax {
			t = min(t, int(math.Round(st.control.Max)))
		}
		return t, float64(t), t != st.intValue
	case core.ParamTypeFloat:
		if c.floatSetter == nil {
			return 0, 0, false
		}
		step := st.control.Step
		if step <= 0 {
			step = 0.05
		}
		t := st.floatValue + float64(dir)*step
		if st.control.HasMin {
			t = math.Max(t, st.control.Min)
		}
		if st.control.HasMax {
			t = math.Min(t, st.control.Max)
		}
		return 0, t, math.Abs(t-st.floatValue) >= 1e-9
	}
	return 0, 0, false
}

// CanAdjust reports whether control i can move in direction dir.
func (c *Controls) CanAdjust(i, dir int) bool {
	if i < 0 || i >= len(c.states) || dir == 0 || !c.states[i].hasValue {
		return false
	}
	_, _, ok := c.target(&c.states[i], dir)
	return ok
}

// Adjust moves control i one step in direction dir through the sim's setter.
func (c *Controls) Adjust(i, dir int) bool {
	if !c.CanAdjust(i, dir) {
		return false
	}
	st := &c.states[i]
	iv, fv, _ := c.target(st, dir)
	switch st.control.Type {
	case core.ParamTypeInt:
		if !c.intSetter.SetIntParameter(st.control.Key, iv) {
			return false
		}
		st.intValue, st.floatValue = iv, fv
		st.value = strconv.Itoa(iv)
	case core.ParamTypeFloat:
		if !c.floatSetter.SetFloatParameter(st.control.Key, fv) {
			return false
		}
		st.floatValue = fv
		st.value = formatFloat(st.control, fv)
	}
	return true
}

func (c *Controls) layout() {
	if c.width <= 0 {
		return
	}
	for i := range c.states {
		top := controlsTop + i*lineHeight
		y := top + (lineHeight-buttonSize)/2
		plus := image.Rect(c.width-panelPadding-buttonSize, y, c.width-panelPadding, y+buttonSize)
		minus := image.Rect(plus.Min.X-buttonGap-buttonSize, y, plus.Min.X-buttonGap, y+buttonSize)
		c.states[i].top = top
		c.states[i].minusRect = minus
		c.states[i].plusRect = plus
	}
}

func title(sim core.Sim) string {
	if sim == nil || sim.Name() == "" {
		return "Controls"
	}
	name := sim.Name()
	return fmt.Sprintf("%s Controls", strings.ToUpper(name[:1])+name[1:])
}

func formatFloat(ctrl core.ParameterControl, v float64) string {
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	precision := 1
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

func pointInRect(x, y int, r image.Rectangle) bool {
	return image.Pt(x, y).In(r)
}
