package tester

import (
	"fmt"

	"github.com/sixbit/sixbit/circuit"
)

// A GateConfig describes a stateless combinational gate check.
type GateConfig struct {
	TestName string
	Inputs   []string
	Outputs  []string
	DelayUS  float64 // expected gate delay in microseconds
	Make     func() *circuit.Component
	Expect   func(inputs []bool) []bool
}

// A StatelessGateTest drives every (pre, post) combination of boolean
// inputs, spaced by the expected gate delay, and checks the post-state
// output just before the next transition.
type StatelessGateTest struct {
	GateConfig
}

func (t *StatelessGateTest) Name() string          { return t.TestName }
func (t *StatelessGateTest) OutputNodes() []string { return t.Outputs }

func (t *StatelessGateTest) TestLengthUS() float64 {
	numStates := float64(uint64(1) << uint(2*len(t.Inputs)))
	return t.DelayUS * (2*(numStates+1) + 1)
}

func (t *StatelessGateTest) MakeComponent() *circuit.Component {
	return t.Make()
}

// inputPieces enumerates all (pre, post) input pairs as intervals.
func (t *StatelessGateTest) inputPieces() []Interval {
	n := len(t.Inputs)
	var pieces []Interval
	time := 0.0

	for state := 0; state < 1<<(2*n); state++ {
		pre := make([]float64, n)
		post := make([]float64, n)
		for bit := 0; bit < n; bit++ {
			pre[bit] = float64((state >> uint(2*n-1-bit)) & 1)
			post[bit] = float64((state >> uint(n-1-bit)) & 1)
		}

		pieces = append(pieces, Interval{TimeUS: time, Bits: pre})
		time += t.DelayUS
		pieces = append(pieces, Interval{TimeUS: time, Bits: post})
		time += t.DelayUS
	}

	return pieces
}

func (t *StatelessGateTest) MakeInput(c *circuit.Component) []NodeInput {
	return LinearPiecewise(NodesByName(c, t.Inputs), DefaultTransitionUS,
		t.inputPieces())
}

func (t *StatelessGateTest) CheckOutput(c *circuit.Component, get GetOutput) error {
	return checkPieces(t.inputPieces(), t.DelayUS, t.Outputs, t.Expect, get)
}

// A QuickStatelessGateTest enumerates each boolean input combination
// once, with the prior state set to its complement. As a heuristic,
// the most switching activity occurs when all bits flip.
type QuickStatelessGateTest struct {
	GateConfig
}

func (t *QuickStatelessGateTest) Name() string          { return t.TestName }
func (t *QuickStatelessGateTest) OutputNodes() []string { return t.Outputs }

func (t *QuickStatelessGateTest) TestLengthUS() float64 {
	numStates := float64(uint64(1) << uint(len(t.Inputs)))
	return t.DelayUS * (2*numStates + 1)
}

func (t *QuickStatelessGateTest) MakeComponent() *circuit.Component {
	return t.Make()
}

func (t *QuickStatelessGateTest) inputPieces() []Interval {
	n := len(t.Inputs)
	var pieces []Interval
	time := 0.0

	for state := 0; state < 1<<n; state++ {
		bits := make([]float64, n)
		flipped := make([]float64, n)
		for bit := 0; bit < n; bit++ {
			v := float64((state >> uint(n-1-bit)) & 1)
			bits[bit] = v
			flipped[bit] = 1 - v
		}

		pieces = append(pieces, Interval{TimeUS: time, Bits: flipped})
		time += t.DelayUS
		pieces = append(pieces, Interval{TimeUS: time, Bits: bits})
		time += t.DelayUS
	}

	return pieces
}

func (t *QuickStatelessGateTest) MakeInput(c *circuit.Component) []NodeInput {
	return LinearPiecewise(NodesByName(c, t.Inputs), DefaultTransitionUS,
		t.inputPieces())
}

func (t *QuickStatelessGateTest) CheckOutput(c *circuit.Component, get GetOutput) error {
	return checkPieces(t.inputPieces(), t.DelayUS, t.Outputs, t.Expect, get)
}

// checkPieces verifies the expected output of every interval just
// before the following transition.
func checkPieces(pieces []Interval, delayUS float64, outputs []string,
	expect func([]bool) []bool, get GetOutput) error {

	for _, piece := range pieces {
		checkTime := piece.TimeUS + delayUS - DefaultTransitionUS
		actual, err := get(checkTime * 1e-6)
		if err != nil {
			return err
		}

		inputs := make([]bool, len(piece.Bits))
		for i, bit := range piece.Bits {
			inputs[i] = bit != 0
		}
		expected := expect(inputs)
		if len(expected) != len(outputs) {
			panic("tester: expectation arity mismatch")
		}

		for i, name := range outputs {
			if !checkLevel(actual[name], expected[i]) {
				return fmt.Errorf(
					"incorrect value @ t = %v us:\n"+
						"      Input: %v\n"+
						"   Expected: %v\n"+
						"     Actual: %v\n"+
						"      State: i=%d output_node=%s",
					checkTime, inputs, expected, actual, i, name)
			}
		}
	}
	return nil
}
