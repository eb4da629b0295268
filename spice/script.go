// Package spice adapts circuits to an external ngspice process. Its
// only contract with the rest of the system is "writes a two-column
// time-series data file".
package spice

import (
	"fmt"
	"strings"

	"github.com/sixbit/sixbit/circuit"
	"github.com/sixbit/sixbit/sim"
)

// An InputWave drives one node with a piecewise-linear source.
type InputWave struct {
	Node   *circuit.Node
	Points []sim.Point
}

func nodeID(nl *circuit.Netlist, node *circuit.Node, special map[int]string) string {
	if name, ok := special[nl.Group(node)]; ok {
		return name
	}
	return fmt.Sprintf("n%d", nl.Group(node))
}

// Script renders an ngspice batch script for a transient run of the
// netlist. It returns the script and the output column names in order.
func Script(title string, nl *circuit.Netlist, inputs []InputWave,
	outputs []*circuit.Node, timeStep, timeStop string) (string, []string) {

	var segments []string

	special := make(map[int]string)
	var outputNames []string
	for _, out := range outputs {
		id := nl.Group(out)
		if _, ok := special[id]; ok {
			panic("spice: two outputs share a coalesced group")
		}
		special[id] = fmt.Sprintf("n_%s_%d", out.Name(), id)
		outputNames = append(outputNames, out.Name())
	}
	seen := make(map[string]bool)
	for _, name := range outputNames {
		if seen[name] {
			panic("spice: duplicate output name " + name)
		}
		seen[name] = true
	}

	segments = append(segments,
		fmt.Sprintf(".title %s", title),
		".option TEMP=25C",
		".include 2N7000.mod",
		fmt.Sprintf("Vdd vdd gnd dc %v", float64(circuit.Voltage)))

	compID := 1
	for _, atomic := range nl.Atomics {
		nets := make(map[string]string)
		for _, node := range atomic.Nodes() {
			nets[node.Name()] = nodeID(nl, node, special)
		}
		segments = append(segments,
			atomic.Device().SpiceLine(fmt.Sprintf("a%d", compID), nets))
		compID++
	}

	for _, input := range inputs {
		var pieces []string
		for _, p := range input.Points {
			pieces = append(pieces, fmt.Sprintf("%vus %v", p.TimeUS, p.Volts))
		}
		if input.Points[0].TimeUS != 0 {
			panic("spice: input waveform must start at t=0")
		}
		segments = append(segments, fmt.Sprintf("V%d %s gnd PWL(%s) dc %v",
			compID, nodeID(nl, input.Node, special),
			strings.Join(pieces, " "), input.Points[0].Volts))
		compID++
	}

	var plotVars []string
	for _, out := range outputs {
		plotVars = append(plotVars, fmt.Sprintf("v(%s)", nodeID(nl, out, special)))
	}

	segments = append(segments,
		".control",
		fmt.Sprintf("tran %s %s", timeStep, timeStop),
		"set wr_vecnames",
		fmt.Sprintf("wrdata out.data %s", strings.Join(plotVars, " ")),
		"quit",
		".endc",
		".end")

	return strings.Join(segments, "\n") + "\n", outputNames
}
