// Package tester drives circuits with scripted input waveforms and
// asserts logic-level outputs at checkpoints, either through the
// built-in simulator or through the external spice adapter.
package tester

import (
	"fmt"

	"github.com/sixbit/sixbit/circuit"
	"github.com/sixbit/sixbit/sim"
)

// DefaultTransitionUS is the input rise/fall time in microseconds.
const DefaultTransitionUS = 0.1

// A NodeInput is a piecewise-linear waveform attached to a node.
type NodeInput struct {
	Node   *circuit.Node
	Points []sim.Point
}

// GetOutput looks up the output voltages recorded nearest below a time
// (in seconds), keyed by node name.
type GetOutput func(timeSec float64) (map[string]float64, error)

// A Test describes one circuit check: the component to build, the
// waveforms to drive it with, and the output assertion.
type Test interface {
	Name() string
	OutputNodes() []string
	TestLengthUS() float64
	MakeComponent() *circuit.Component
	MakeInput(c *circuit.Component) []NodeInput
	CheckOutput(c *circuit.Component, get GetOutput) error
}

// Options control how tests are run.
type Options struct {
	Verbose     bool
	Interactive bool
	DumpNetlist bool
	Context     string // "simulation" or "spice", for banners
}

// An Interval is one step of a logic-level input script: at TimeUS the
// named inputs take the given bit values.
type Interval struct {
	TimeUS float64
	Bits   []float64
}

// NodesByName resolves port names on a component.
func NodesByName(c *circuit.Component, names []string) []*circuit.Node {
	nodes := make([]*circuit.Node, len(names))
	for i, name := range names {
		nodes[i] = c.Node(name)
	}
	return nodes
}

// LinearPiecewise transforms logic-level intervals into per-node
// piecewise-linear ramps. Each transition ramps over the given
// transition time between 0V and the supply voltage.
func LinearPiecewise(nodes []*circuit.Node, transitionUS float64,
	intervals []Interval) []NodeInput {

	inputs := make([]NodeInput, len(nodes))
	for i, node := range nodes {
		inputs[i].Node = node
	}

	for num, interval := range intervals {
		if len(interval.Bits) != len(nodes) {
			panic(fmt.Sprintf("tester: interval %d has %d bits for %d nodes",
				num, len(interval.Bits), len(nodes)))
		}

		if num == 0 {
			for i, bit := range interval.Bits {
				inputs[i].Points = append(inputs[i].Points,
					sim.Point{TimeUS: interval.TimeUS, Volts: bit * circuit.Voltage})
			}
			continue
		}

		old := intervals[num-1]
		for i, bit := range old.Bits {
			inputs[i].Points = append(inputs[i].Points,
				sim.Point{TimeUS: interval.TimeUS, Volts: bit * circuit.Voltage})
		}
		for i, bit := range interval.Bits {
			inputs[i].Points = append(inputs[i].Points,
				sim.Point{TimeUS: interval.TimeUS + transitionUS, Volts: bit * circuit.Voltage})
		}
	}

	return inputs
}

// checkLevel asserts one measured voltage against an expected logic
// level.
func checkLevel(voltage float64, expectHigh bool) bool {
	if expectHigh {
		return voltage > circuit.HighThreshold
	}
	return voltage < circuit.LowThreshold
}
