package tester

import (
	"fmt"
	"math"

	"github.com/davecgh/go-spew/spew"
	"github.com/golang/glog"

	"github.com/sixbit/sixbit/circuit"
	"github.com/sixbit/sixbit/sim"
	"github.com/sixbit/sixbit/spice"
)

// SimTimeStep is the transient timestep used by the built-in simulator.
const SimTimeStep = 80e-9

func startTest(t Test, opt Options) {
	fmt.Printf("\n  === %s (%s) ===\n", t.Name(), opt.Context)
}

func makeNetlist(t Test, opt Options) (*circuit.Component, *circuit.Netlist, error) {
	component := t.MakeComponent()
	nl, err := circuit.MakeNetlist(component)
	if err != nil {
		return nil, nil, err
	}
	if opt.Verbose || opt.DumpNetlist {
		fmt.Print(nl.Dump())
	}
	return component, nl, nil
}

// outputNodes returns the test's output nodes plus every driven input
// node, deduplicated, preserving first-appearance order.
func outputNodes(t Test, c *circuit.Component, inputs []NodeInput) []*circuit.Node {
	var nodes []*circuit.Node
	seen := make(map[*circuit.Node]bool)

	for _, node := range NodesByName(c, t.OutputNodes()) {
		if !seen[node] {
			seen[node] = true
			nodes = append(nodes, node)
		}
	}
	for _, input := range inputs {
		if !seen[input.Node] {
			seen[input.Node] = true
			nodes = append(nodes, input.Node)
		}
	}
	return nodes
}

// RunSim builds the test's circuit and checks it against the built-in
// transient simulator.
func RunSim(t Test, opt Options) error {
	startTest(t, opt)
	component, nl, err := makeNetlist(t, opt)
	if err != nil {
		return err
	}

	inputs := t.MakeInput(component)
	for _, input := range inputs {
		if len(input.Points) > 0 &&
			input.Points[len(input.Points)-1].TimeUS >= t.TestLengthUS() {
			return fmt.Errorf("tester: input waveform outlives test %q", t.Name())
		}
	}

	outputs := outputNodes(t, component, inputs)
	outputGroups := make([]int, len(outputs))
	outputNames := make([]string, len(outputs))
	for i, node := range outputs {
		outputGroups[i] = nl.Group(node)
		outputNames[i] = node.Name()
	}

	simInputs := make([]sim.Input, len(inputs))
	for i, input := range inputs {
		simInputs[i] = sim.Input{Group: nl.Group(input.Node), Points: input.Points}
	}

	samples := sim.Run(nl.NumGroups(), nl.SimDevices(), simInputs, outputGroups,
		sim.Options{
			TimeStep: SimTimeStep,
			TimeStop: t.TestLengthUS() * 1e-6,
			Progress: true,
		})

	if opt.Verbose {
		glog.V(1).Info(spew.Sdump(samples[len(samples)-1]))
	}

	get := func(timeSec float64) (map[string]float64, error) {
		// Binary search for the last sample before the requested time.
		start, end := 0, len(samples)
		for start+1 < end {
			mid := (start + end) / 2
			if samples[mid].Time < timeSec {
				start = mid
			} else {
				end = mid
			}
		}
		if math.Abs(samples[start].Time-timeSec) > SimTimeStep*2 {
			return nil, fmt.Errorf("tester: no data at time %v", timeSec)
		}
		out := make(map[string]float64, len(outputNames))
		for i, name := range outputNames {
			out[name] = samples[start].Volts[i]
		}
		return out, nil
	}

	return t.CheckOutput(component, get)
}

// RunSpice builds the test's circuit, hands it to the external spice
// adapter, and checks the resulting data file.
func RunSpice(t Test, opt Options) error {
	startTest(t, opt)
	component, nl, err := makeNetlist(t, opt)
	if err != nil {
		return err
	}

	inputs := t.MakeInput(component)
	outputs := outputNodes(t, component, inputs)

	waves := make([]spice.InputWave, len(inputs))
	for i, input := range inputs {
		waves[i] = spice.InputWave{Node: input.Node, Points: input.Points}
	}

	source, outputNames := spice.Script(t.Name(), nl, waves, outputs,
		"1ns", fmt.Sprintf("%vus", t.TestLengthUS()))

	data, err := spice.RunScript(source, outputNames, opt.Verbose)
	if err != nil {
		return err
	}

	return t.CheckOutput(component, data.At)
}
