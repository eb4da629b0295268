package spice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sixbit/sixbit/circuit"
	"github.com/sixbit/sixbit/sim"
)

func TestScriptEmission(t *testing.T) {
	gate := circuit.NewNotGate(nil, "main")
	nl, err := circuit.MakeNetlist(gate)
	require.NoError(t, err)

	inputs := []InputWave{{
		Node: gate.Node("a"),
		Points: []sim.Point{
			{TimeUS: 0, Volts: 0},
			{TimeUS: 2, Volts: 5},
		},
	}}

	source, outputs := Script("not gate", nl, inputs,
		[]*circuit.Node{gate.Node("out")}, "1ns", "5us")

	assert.Equal(t, []string{"out"}, outputs)
	assert.True(t, strings.HasPrefix(source, ".title not gate\n"))
	assert.Contains(t, source, ".include 2N7000.mod")
	assert.Contains(t, source, "2N7000")
	assert.Contains(t, source, "PWL(0us 0 2us 5)")
	assert.Contains(t, source, "tran 1ns 5us")
	assert.Contains(t, source, "wrdata out.data v(")
	assert.Contains(t, source, ".end")

	// The output node gets a named net carrying its port name.
	assert.Contains(t, source, "n_out_")
}

func TestScriptRejectsSharedOutputGroups(t *testing.T) {
	gate := circuit.NewNotGate(nil, "main")
	nl, err := circuit.MakeNetlist(gate)
	require.NoError(t, err)

	// The gate's output and the MOSFET drain coalesce to one group.
	drain := gate.Subs()[0].Node("drain")
	assert.Panics(t, func() {
		Script("bad", nl, nil, []*circuit.Node{gate.Node("out"), drain},
			"1ns", "5us")
	})
}
