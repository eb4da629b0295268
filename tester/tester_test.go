package tester

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sixbit/sixbit/circuit"
	"github.com/sixbit/sixbit/sim"
)

func TestLinearPiecewise(t *testing.T) {
	c := circuit.NewNandGate(nil, "main")
	nodes := NodesByName(c, []string{"a", "b"})

	inputs := LinearPiecewise(nodes, 0.1, []Interval{
		{TimeUS: 0, Bits: []float64{0, 1}},
		{TimeUS: 4, Bits: []float64{1, 1}},
	})

	require.Len(t, inputs, 2)

	// Node a: starts low, ramps up at the second interval.
	assert.Equal(t, []sim.Point{
		{TimeUS: 0, Volts: 0},
		{TimeUS: 4, Volts: 0},
		{TimeUS: 4.1, Volts: 5},
	}, inputs[0].Points)

	// Node b: high throughout.
	assert.Equal(t, []sim.Point{
		{TimeUS: 0, Volts: 5},
		{TimeUS: 4, Volts: 5},
		{TimeUS: 4.1, Volts: 5},
	}, inputs[1].Points)
}

func TestStatelessPiecesCoverAllTransitions(t *testing.T) {
	gate := Tests["not"].(*StatelessGateTest)
	pieces := gate.inputPieces()

	// 1 input: 4 (pre, post) pairs, two intervals each.
	require.Len(t, pieces, 8)
	assert.Equal(t, 0.0, pieces[0].TimeUS)
	assert.Less(t, pieces[len(pieces)-1].TimeUS, gate.TestLengthUS())
}

func TestQuickPiecesFlipAllBits(t *testing.T) {
	gate := quickIncrementorTest(2).(*QuickStatelessGateTest)
	pieces := gate.inputPieces()

	require.Len(t, pieces, 8)
	for i := 0; i < len(pieces); i += 2 {
		for bit := range pieces[i].Bits {
			assert.Equal(t, 1-pieces[i].Bits[bit], pieces[i+1].Bits[bit])
		}
	}
}

func TestRegistryIsConsistent(t *testing.T) {
	require.Len(t, Tests, len(TestOrder))
	for _, name := range TestOrder {
		_, ok := Tests[name]
		assert.True(t, ok, "test %q missing from map", name)
	}
}

func TestIncrementorExpect(t *testing.T) {
	expect := incrementorExpect(3)

	// 011 + 1 = 0100 (MSB first)
	assert.Equal(t, []bool{false, true, false, false},
		expect([]bool{false, true, true}))

	// 111 + 1 = 1000
	assert.Equal(t, []bool{true, false, false, false},
		expect([]bool{true, true, true}))
}

// The not gate through the full harness is the cheapest end-to-end
// simulator run.
func TestRunSimNotGate(t *testing.T) {
	if testing.Short() {
		t.Skip("transient run")
	}
	err := RunSim(Tests["not"], Options{Context: "simulation"})
	require.NoError(t, err)
}

// A NAND gate driven through all four input combinations must pull low
// only for (1,1) — checked just before each following transition.
func TestRunSimNandGate(t *testing.T) {
	if testing.Short() {
		t.Skip("transient run")
	}
	err := RunSim(Tests["nand"], Options{Context: "simulation"})
	require.NoError(t, err)
}

// The SR latch holds Q after S is released and clears it after an R
// pulse.
func TestRunSimSRLatch(t *testing.T) {
	if testing.Short() {
		t.Skip("transient run")
	}
	err := RunSim(Tests["sr_latch"], Options{Context: "simulation"})
	require.NoError(t, err)
}
