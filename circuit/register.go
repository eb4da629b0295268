package circuit

import "fmt"

// NewRegister builds a bank of D latches sharing a write line. The port
// list is derived from the width: write_to_reg, in_*, out_* and
// not_out_* per bit.
func NewRegister(parent *Component, role string, numBits int) *Component {
	if numBits < 2 {
		panic("circuit: register needs at least 2 bits")
	}

	names := []string{"write_to_reg"}
	names = append(names, BitNames("in_", numBits)...)
	names = append(names, BitNames("out_", numBits)...)
	names = append(names, BitNames("not_out_", numBits)...)

	c := New(parent, fmt.Sprintf("register_%d", numBits), role, names)

	for i := 0; i < numBits; i++ {
		latch := NewDLatch(c, fmt.Sprintf("latch_%d", i))
		c.Connect(fmt.Sprintf("in_%d", i), latch.Node("in"))
		c.Connect("write_to_reg", latch.Node("clock"))
		c.Connect(fmt.Sprintf("out_%d", i), latch.Node("out"))
		c.Connect(fmt.Sprintf("not_out_%d", i), latch.Node("not_out"))
	}
	return c
}
