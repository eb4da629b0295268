// Gates based on NMOS logic.

package circuit

// NewNandGate builds a two-input NAND: two MOSFETs in series under a
// pull-up resistor.
func NewNandGate(parent *Component, role string) *Component {
	c := New(parent, "nand", role, []string{"a", "b", "out", "_mid", "_gnd"})

	mosfetA := NewMosfet(c, "nmos_a")
	mosfetB := NewMosfet(c, "nmos_b")
	pullup := NewPullUp(c, "pullup")
	ground := NewGround(c, "gnd")

	c.Connect("out", pullup.Node("a"))
	c.Connect("out", mosfetA.Node("drain"))
	c.Connect("a", mosfetA.Node("gate"))
	c.Connect("_mid", mosfetA.Node("source"))
	c.Connect("_mid", mosfetB.Node("drain"))
	c.Connect("b", mosfetB.Node("gate"))
	c.Connect("_gnd", mosfetB.Node("source"))
	c.Connect("_gnd", ground.Node("a"))
	return c
}

// NewNorGate builds a two-input NOR: two MOSFETs in parallel under a
// pull-up resistor.
func NewNorGate(parent *Component, role string) *Component {
	c := New(parent, "nor", role, []string{"a", "b", "out", "_gnd"})

	mosfetA := NewMosfet(c, "nmos_a")
	mosfetB := NewMosfet(c, "nmos_b")
	pullup := NewPullUp(c, "pullup")
	ground := NewGround(c, "gnd")

	c.Connect("out", pullup.Node("a"))
	c.Connect("out", mosfetA.Node("drain"))
	c.Connect("out", mosfetB.Node("drain"))

	c.Connect("a", mosfetA.Node("gate"))
	c.Connect("b", mosfetB.Node("gate"))

	c.Connect("_gnd", mosfetA.Node("source"))
	c.Connect("_gnd", mosfetB.Node("source"))
	c.Connect("_gnd", ground.Node("a"))
	return c
}

// NewNotGate builds an inverter: one MOSFET under a pull-up resistor.
func NewNotGate(parent *Component, role string) *Component {
	c := New(parent, "not", role, []string{"a", "out", "_gnd"})

	mosfet := NewMosfet(c, "nmos")
	pullup := NewPullUp(c, "pullup")
	ground := NewGround(c, "ground")

	c.Connect("a", mosfet.Node("gate"))
	c.Connect("out", mosfet.Node("drain"))
	c.Connect("out", pullup.Node("a"))
	c.Connect("_gnd", mosfet.Node("source"))
	c.Connect("_gnd", ground.Node("a"))
	return c
}

// NewAndGate builds AND as NAND followed by NOT.
func NewAndGate(parent *Component, role string) *Component {
	c := New(parent, "and", role, []string{"a", "b", "_nand_res", "out"})

	nand := NewNandGate(c, "nand")
	not := NewNotGate(c, "not")

	c.Connect("a", nand.Node("a"))
	c.Connect("b", nand.Node("b"))
	c.Connect("_nand_res", nand.Node("out"))
	c.Connect("_nand_res", not.Node("a"))
	c.Connect("out", not.Node("out"))
	return c
}

// NewOrGate builds OR as NOR followed by NOT.
func NewOrGate(parent *Component, role string) *Component {
	c := New(parent, "or", role, []string{"a", "b", "_nor_res", "out"})

	nor := NewNorGate(c, "nor")
	not := NewNotGate(c, "not")

	c.Connect("a", nor.Node("a"))
	c.Connect("b", nor.Node("b"))
	c.Connect("_nor_res", nor.Node("out"))
	c.Connect("_nor_res", not.Node("a"))
	c.Connect("out", not.Node("out"))
	return c
}

// NewXorGate builds XOR from two inverters and two series MOSFET pairs
// pulling a shared output low when the inputs agree.
func NewXorGate(parent *Component, role string) *Component {
	c := New(parent, "xor", role, []string{
		"a", "b", "_not_a", "_not_b", "_gnd",
		"_mid_left", "_mid_right", "out",
	})

	notA := NewNotGate(c, "not_a")
	notB := NewNotGate(c, "not_b")

	c.Connect("a", notA.Node("a"))
	c.Connect("b", notB.Node("a"))

	c.Connect("_not_a", notA.Node("out"))
	c.Connect("_not_b", notB.Node("out"))

	pullup := NewPullUp(c, "pullup")
	c.Connect("out", pullup.Node("a"))

	ground := NewGround(c, "gnd")
	c.Connect("_gnd", ground.Node("a"))

	nmosA := NewMosfet(c, "nmos_a")
	nmosB := NewMosfet(c, "nmos_b")

	c.Connect("a", nmosA.Node("gate"))
	c.Connect("b", nmosB.Node("gate"))

	c.Connect("out", nmosA.Node("drain"))
	c.Connect("_mid_right", nmosA.Node("source"))
	c.Connect("_mid_right", nmosB.Node("drain"))
	c.Connect("_gnd", nmosB.Node("source"))

	nmosNotA := NewMosfet(c, "nmos_not_a")
	nmosNotB := NewMosfet(c, "nmos_not_b")

	c.Connect("_not_a", nmosNotA.Node("gate"))
	c.Connect("_not_b", nmosNotB.Node("gate"))

	c.Connect("out", nmosNotA.Node("drain"))
	c.Connect("_mid_left", nmosNotA.Node("source"))
	c.Connect("_mid_left", nmosNotB.Node("drain"))
	c.Connect("_gnd", nmosNotB.Node("source"))
	return c
}
