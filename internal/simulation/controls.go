package simulation

import (
	"sync/atomic"

	"github.com/chrissnell/greenhouse/pkg/growth"
)

// Controls holds the live slider values of one greenhouse. They are read fresh
// on every tick, so they can be changed at any time, including mid-run.
type Controls struct {
	current atomic.Pointer[growth.Inputs]
}

// ControlsUpdate is a partial change to a greenhouse's controls. Nil fields are
// left untouched.
type ControlsUpdate struct {
	Temperature *int `json:"temperature,omitempty"`
	Lights      *int `json:"lights,omitempty"`
	CO2         *int `json:"co2,omitempty"`
}

// NewControls returns controls initialised to in, clamped.
func NewControls(in growth.Inputs) *Controls {
	c := &Controls{}
	c.Store(in)
	return c
}

// Inputs returns the current control values.
func (c *Controls) Inputs() growth.Inputs {
	return *c.current.Load()
}

// Store replaces every control value.
func (c *Controls) Store(in growth.Inputs) {
	in = in.Clamped()
	c.current.Store(&in)
}

// Apply merges a partial update into the controls and returns the result.
// Fields left nil keep whatever value is current when the update lands, even
// if another update changed them concurrently.
func (c *Controls) Apply(u ControlsUpdate) growth.Inputs {
	for {
		old := c.current.Load()
		in := *old
		if u.Temperature != nil {
			in.Temperature = *u.Temperature
		}
		if u.Lights != nil {
			in.Lights = *u.Lights
		}
		if u.CO2 != nil {
			in.CO2 = *u.CO2
		}
		in = in.Clamped()
		if c.current.CompareAndSwap(old, &in) {
			return in
		}
	}
}
