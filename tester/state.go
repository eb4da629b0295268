package tester

import (
	"fmt"

	"github.com/sixbit/sixbit/circuit"
)

// An IOEvent is one step of a stateful component script: at TimeUS the
// inputs take Bits; just before the event, Expected levels must hold.
type IOEvent struct {
	TimeUS   float64
	Expected map[string]bool
	Bits     []float64
}

// A StateConfig describes a hand-written stateful component check.
type StateConfig struct {
	TestName string
	Inputs   []string
	Outputs  []string
	Make     func() *circuit.Component
	IO       func() []IOEvent
}

// A ComponentWithStateTest drives a component through a scripted
// sequence of input changes and checks expected output levels shortly
// before each change takes effect.
type ComponentWithStateTest struct {
	StateConfig
}

func (t *ComponentWithStateTest) Name() string          { return t.TestName }
func (t *ComponentWithStateTest) OutputNodes() []string { return t.Outputs }

func (t *ComponentWithStateTest) TestLengthUS() float64 {
	io := t.IO()
	return io[len(io)-1].TimeUS + 5
}

func (t *ComponentWithStateTest) MakeComponent() *circuit.Component {
	return t.Make()
}

func (t *ComponentWithStateTest) MakeInput(c *circuit.Component) []NodeInput {
	io := t.IO()
	intervals := make([]Interval, len(io))
	for i, event := range io {
		intervals[i] = Interval{TimeUS: event.TimeUS, Bits: event.Bits}
	}
	return LinearPiecewise(NodesByName(c, t.Inputs), DefaultTransitionUS,
		intervals)
}

func (t *ComponentWithStateTest) CheckOutput(c *circuit.Component, get GetOutput) error {
	for _, event := range t.IO() {
		if len(event.Expected) == 0 {
			continue
		}
		checkTime := event.TimeUS - 0.05
		actual, err := get(checkTime * 1e-6)
		if err != nil {
			return err
		}

		for _, name := range t.Outputs {
			expected, ok := event.Expected[name]
			if !ok {
				continue
			}
			if !checkLevel(actual[name], expected) {
				return fmt.Errorf(
					"incorrect value @ t = %v us:\n"+
						"   Expected: %v\n"+
						"     Actual: %v",
					checkTime, event.Expected, actual)
			}
		}
	}
	return nil
}
