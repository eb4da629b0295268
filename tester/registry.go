package tester

import (
	"fmt"

	"github.com/sixbit/sixbit/circuit"
)

// TestOrder lists every registered test in suite order. Names prefixed
// "slow" are excluded from spice in run-all mode; "temp" only runs when
// named explicitly.
var TestOrder = []string{
	"nand", "and", "nor", "or", "not", "xor",
	"sr_latch", "d_latch", "half_adder",
	"quick_incrementor", "slow_quick_incrementor", "slow_incrementor",
	"reg2", "slow_reg5", "slow_reg6",
	"temp",
}

// Tests maps test names to their definitions.
var Tests = map[string]Test{
	"nand": &StatelessGateTest{GateConfig{
		TestName: "nand gate",
		Inputs:   []string{"a", "b"},
		Outputs:  []string{"out"},
		DelayUS:  4,
		Make:     func() *circuit.Component { return circuit.NewNandGate(nil, "main") },
		Expect: func(in []bool) []bool {
			return []bool{!(in[0] && in[1])}
		},
	}},
	"and": &StatelessGateTest{GateConfig{
		TestName: "and gate",
		Inputs:   []string{"a", "b"},
		Outputs:  []string{"out"},
		DelayUS:  3,
		Make:     func() *circuit.Component { return circuit.NewAndGate(nil, "main") },
		Expect: func(in []bool) []bool {
			return []bool{in[0] && in[1]}
		},
	}},
	"nor": &StatelessGateTest{GateConfig{
		TestName: "nor gate",
		Inputs:   []string{"a", "b"},
		Outputs:  []string{"out"},
		DelayUS:  3,
		Make:     func() *circuit.Component { return circuit.NewNorGate(nil, "main") },
		Expect: func(in []bool) []bool {
			return []bool{!(in[0] || in[1])}
		},
	}},
	"or": &StatelessGateTest{GateConfig{
		TestName: "or gate",
		Inputs:   []string{"a", "b"},
		Outputs:  []string{"out"},
		DelayUS:  3,
		Make:     func() *circuit.Component { return circuit.NewOrGate(nil, "main") },
		Expect: func(in []bool) []bool {
			return []bool{in[0] || in[1]}
		},
	}},
	"not": &StatelessGateTest{GateConfig{
		TestName: "not gate",
		Inputs:   []string{"a"},
		Outputs:  []string{"out"},
		DelayUS:  2,
		Make:     func() *circuit.Component { return circuit.NewNotGate(nil, "main") },
		Expect: func(in []bool) []bool {
			return []bool{!in[0]}
		},
	}},
	"xor": &StatelessGateTest{GateConfig{
		TestName: "xor gate",
		Inputs:   []string{"a", "b"},
		Outputs:  []string{"out"},
		DelayUS:  5,
		Make:     func() *circuit.Component { return circuit.NewXorGate(nil, "main") },
		Expect: func(in []bool) []bool {
			return []bool{in[0] != in[1]}
		},
	}},
	"sr_latch": &ComponentWithStateTest{StateConfig{
		TestName: "sr latch",
		Inputs:   []string{"s", "r"},
		Outputs:  []string{"q", "q_not"},
		Make:     func() *circuit.Component { return circuit.NewSRLatch(nil, "main") },
		IO:       srLatchIO,
	}},
	"d_latch": &ComponentWithStateTest{StateConfig{
		TestName: "d latch",
		Inputs:   []string{"in", "clock"},
		Outputs:  []string{"out", "not_out"},
		Make:     func() *circuit.Component { return circuit.NewDLatch(nil, "main") },
		IO:       dLatchIO,
	}},
	"half_adder": &StatelessGateTest{GateConfig{
		TestName: "half adder",
		Inputs:   []string{"a", "b"},
		Outputs:  []string{"sum_out", "carry_out"},
		DelayUS:  5,
		Make:     func() *circuit.Component { return circuit.NewHalfAdder(nil, "main") },
		Expect: func(in []bool) []bool {
			return []bool{in[0] != in[1], in[0] && in[1]}
		},
	}},
	"quick_incrementor":      quickIncrementorTest(2),
	"slow_quick_incrementor": quickIncrementorTest(5),
	"slow_incrementor":       incrementorTest(3),
	"reg2":                   registerTest(2),
	"slow_reg5":              registerTest(5),
	"slow_reg6":              registerTest(6),
	"temp":                   tempTest(),
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func reversed(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[len(names)-1-i] = name
	}
	return out
}

func srLatchIO() []IOEvent {
	time := 0.0
	var io []IOEvent
	for state := 0; state < 8; state++ {
		pre := state&4 != 0
		post := state&2 != 0
		delay := state&1 != 0

		held := map[string]bool{"q": pre, "q_not": !pre}

		io = append(io, IOEvent{time, nil, []float64{b2f(pre), b2f(!pre)}})
		time += 5
		if delay {
			io = append(io, IOEvent{time, held, []float64{0, 0}})
			time += 4
			io = append(io, IOEvent{time, held, []float64{0, 0}})
			time += 2
		}
		io = append(io, IOEvent{time, held, []float64{b2f(post), b2f(!post)}})
		time += 2
		io = append(io, IOEvent{time, nil, []float64{0, 0}})
		time += 3
		io = append(io, IOEvent{time,
			map[string]bool{"q": post, "q_not": !post}, []float64{0, 0}})
		time += 1
	}
	return io
}

func dLatchIO() []IOEvent {
	time := 0.0
	var io []IOEvent
	for state := 0; state < 16; state++ {
		pre := state&8 != 0
		post := state&4 != 0
		delay := state&2 != 0
		doClock := state&1 != 0

		expectedPre := map[string]bool{"out": pre, "not_out": !pre}
		expectedPost := map[string]bool{"out": post, "not_out": !post}

		io = append(io, IOEvent{time, nil, []float64{b2f(pre), 1}})
		time += 8

		if delay {
			io = append(io, IOEvent{time, expectedPre, []float64{b2f(pre), 0}})
			time += 4
			io = append(io, IOEvent{time, expectedPre, []float64{b2f(!pre), 0}})
			time += 2
		}

		if doClock {
			io = append(io, IOEvent{time, expectedPre, []float64{b2f(post), 1}})
			time += 3
			io = append(io, IOEvent{time, nil, []float64{b2f(post), 0}})
			time += 1
			io = append(io, IOEvent{time, nil, []float64{b2f(!post), 0}})
			time += 4
			io = append(io, IOEvent{time, expectedPost, []float64{b2f(!post), 0}})
			time += 1
		} else {
			io = append(io, IOEvent{time, expectedPre, []float64{b2f(post), 0}})
			time += 2
			io = append(io, IOEvent{time, expectedPre, []float64{b2f(post), 0}})
			time += 1
			io = append(io, IOEvent{time, expectedPre, []float64{b2f(!post), 0}})
			time += 2
			io = append(io, IOEvent{time, expectedPre, []float64{b2f(!post), 0}})
			time += 1
		}
	}
	return io
}

// incrementorExpect interprets MSB-first input bits as an integer, adds
// one, and emits MSB-first output bits one bit wider.
func incrementorExpect(numBits int) func([]bool) []bool {
	return func(in []bool) []bool {
		value := 0
		for _, bit := range in {
			value <<= 1
			if bit {
				value |= 1
			}
		}
		value++

		out := make([]bool, numBits+1)
		for i := 0; i <= numBits; i++ {
			out[numBits-i] = value&(1<<uint(i)) != 0
		}
		return out
	}
}

func incrementorTest(numBits int) Test {
	return &StatelessGateTest{GateConfig{
		TestName: fmt.Sprintf("incrementor (%d bits)", numBits),
		Inputs:   reversed(circuit.BitNames("in_", numBits)),
		Outputs:  reversed(circuit.BitNames("out_", numBits+1)),
		DelayUS:  15,
		Make: func() *circuit.Component {
			return circuit.NewIncrementor(nil, "main", numBits)
		},
		Expect: incrementorExpect(numBits),
	}}
}

func quickIncrementorTest(numBits int) Test {
	return &QuickStatelessGateTest{GateConfig{
		TestName: fmt.Sprintf("incrementor (%d bits), quick", numBits),
		Inputs:   reversed(circuit.BitNames("in_", numBits)),
		Outputs:  reversed(circuit.BitNames("out_", numBits+1)),
		DelayUS:  15,
		Make: func() *circuit.Component {
			return circuit.NewIncrementor(nil, "main", numBits)
		},
		Expect: incrementorExpect(numBits),
	}}
}

func registerTest(numBits int) Test {
	return &ComponentWithStateTest{StateConfig{
		TestName: fmt.Sprintf("register (%d bits)", numBits),
		Inputs: append([]string{"write_to_reg"},
			circuit.BitNames("in_", numBits)...),
		Outputs: append(circuit.BitNames("out_", numBits),
			circuit.BitNames("not_out_", numBits)...),
		Make: func() *circuit.Component {
			return circuit.NewRegister(nil, "main", numBits)
		},
		IO: func() []IOEvent { return registerIO(numBits) },
	}}
}

func registerIO(numBits int) []IOEvent {
	time := 0.0
	var io []IOEvent

	for state := 0; state < 1<<uint(numBits); state++ {
		data := make([]float64, numBits)
		notData := make([]float64, numBits)
		for bit := 0; bit < numBits; bit++ {
			v := float64((state >> uint(numBits-1-bit)) & 1)
			data[bit] = v
			notData[bit] = 1 - v
		}

		outputPre := make(map[string]bool, 2*numBits)
		outputPost := make(map[string]bool, 2*numBits)
		for i := 0; i < numBits; i++ {
			outputPre[fmt.Sprintf("out_%d", i)] = data[i] == 0
			outputPre[fmt.Sprintf("not_out_%d", i)] = data[i] != 0
			outputPost[fmt.Sprintf("out_%d", i)] = data[i] != 0
			outputPost[fmt.Sprintf("not_out_%d", i)] = data[i] == 0
		}

		io = append(io, IOEvent{time, nil, append([]float64{1}, notData...)})
		time += 8
		io = append(io, IOEvent{time, outputPre, append([]float64{0}, notData...)})
		time += 2
		io = append(io, IOEvent{time, outputPre, append([]float64{1}, data...)})
		time += 8
		io = append(io, IOEvent{time, outputPost, append([]float64{0}, data...)})
		time += 2
		for i := 0; i < 3; i++ {
			io = append(io, IOEvent{time, outputPost, append([]float64{0}, data...)})
			time += 2
		}
	}

	return io
}

// tempTest is a scratch slot for putting components in the harness
// temporarily. It watches the RC fixture's midpoint settle.
func tempTest() Test {
	return &ComponentWithStateTest{StateConfig{
		TestName: "temp",
		Inputs:   nil,
		Outputs:  []string{"a"},
		Make: func() *circuit.Component {
			return circuit.NewRCFixture(nil, "main")
		},
		IO: func() []IOEvent {
			return []IOEvent{
				{TimeUS: 0, Expected: nil, Bits: nil},
				{TimeUS: 20, Expected: map[string]bool{"a": true}, Bits: nil},
			}
		},
	}}
}
