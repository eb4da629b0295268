package circuit

import "fmt"

// NewHalfAdder builds a half adder from an XOR (sum) and an AND
// (carry).
func NewHalfAdder(parent *Component, role string) *Component {
	c := New(parent, "half_adder", role,
		[]string{"a", "b", "sum_out", "carry_out"})

	carryAnd := NewAndGate(c, "carry_and")
	sumXor := NewXorGate(c, "sum_xor")

	c.Connect("a", sumXor.Node("a"))
	c.Connect("b", sumXor.Node("b"))
	c.Connect("sum_out", sumXor.Node("out"))

	c.Connect("a", carryAnd.Node("a"))
	c.Connect("b", carryAnd.Node("b"))
	c.Connect("carry_out", carryAnd.Node("out"))
	return c
}

// NewIncrementor builds a width-parameterized incrementor: a NOT on bit
// 0 and a ripple of half adders carrying upward. The output is one bit
// wider than the input.
func NewIncrementor(parent *Component, role string, numBits int) *Component {
	if numBits < 2 {
		panic("circuit: incrementor needs at least 2 bits")
	}

	names := BitNames("in_", numBits)
	names = append(names, BitNames("out_", numBits+1)...)
	carries := BitNames("_carry_", numBits)
	names = append(names, carries[1:numBits-1]...)

	c := New(parent, "unsized_incrementor", role, names)

	in0Not := NewNotGate(c, "in_0_not")
	c.Connect("in_0", in0Not.Node("a"))
	c.Connect("out_0", in0Not.Node("out"))

	previousCarry := "in_0"
	for bit := 1; bit < numBits; bit++ {
		adder := NewHalfAdder(c, fmt.Sprintf("adder_%d", bit))
		c.Connect(fmt.Sprintf("in_%d", bit), adder.Node("a"))
		c.Connect(previousCarry, adder.Node("b"))
		c.Connect(fmt.Sprintf("out_%d", bit), adder.Node("sum_out"))

		nextCarry := fmt.Sprintf("_carry_%d", bit)
		if bit == numBits-1 {
			nextCarry = fmt.Sprintf("out_%d", bit+1)
		}
		c.Connect(nextCarry, adder.Node("carry_out"))
		previousCarry = nextCarry
	}
	return c
}
