package circuit

// NewDLatch builds a gated D latch from four NAND gates.
func NewDLatch(parent *Component, role string) *Component {
	c := New(parent, "d_latch", role, []string{
		"in", "clock", "out", "not_out", "_mid_up", "_mid_down",
	})

	nand1Up := NewNandGate(c, "nand1.up")
	nand1Down := NewNandGate(c, "nand1.dn")
	nand2Up := NewNandGate(c, "nand2.up")
	nand2Down := NewNandGate(c, "nand2.dn")

	c.Connect("in", nand1Up.Node("a"))
	c.Connect("clock", nand1Up.Node("b"))
	c.Connect("_mid_up", nand1Down.Node("a"))
	c.Connect("clock", nand1Down.Node("b"))

	c.Connect("_mid_up", nand1Up.Node("out"))
	c.Connect("_mid_down", nand1Down.Node("out"))

	c.Connect("_mid_up", nand2Up.Node("a"))
	c.Connect("not_out", nand2Up.Node("b"))
	c.Connect("out", nand2Down.Node("a"))
	c.Connect("_mid_down", nand2Down.Node("b"))

	c.Connect("out", nand2Up.Node("out"))
	c.Connect("not_out", nand2Down.Node("out"))
	return c
}

// NewSRLatch builds a set/reset latch from two cross-coupled NOR gates.
func NewSRLatch(parent *Component, role string) *Component {
	c := New(parent, "sr_latch", role, []string{"s", "r", "q", "q_not"})

	norUp := NewNorGate(c, "up")
	norDown := NewNorGate(c, "down")

	c.Connect("r", norUp.Node("a"))
	c.Connect("q_not", norUp.Node("b"))
	c.Connect("q", norDown.Node("a"))
	c.Connect("s", norDown.Node("b"))

	c.Connect("q", norUp.Node("out"))
	c.Connect("q_not", norDown.Node("out"))
	return c
}
