package circuit

import (
	"fmt"

	"github.com/sixbit/sixbit/sim"
)

// mosfetDevice is an N-channel MOSFET (2N7000 in the spice model).
type mosfetDevice struct{}

func (mosfetDevice) SpiceLine(id string, nets map[string]string) string {
	return fmt.Sprintf("X%s %s %s %s 2N7000",
		id, nets["drain"], nets["gate"], nets["source"])
}

func (mosfetDevice) SimDevice(groups map[string]int) sim.Device {
	return &sim.Mosfet{
		Drain:  groups["drain"],
		Gate:   groups["gate"],
		Source: groups["source"],
	}
}

// NewMosfet creates an N-type MOSFET with gate, drain and source ports.
func NewMosfet(parent *Component, role string) *Component {
	return NewAtomic(parent, "nmos", role,
		[]string{"gate", "drain", "source"}, mosfetDevice{})
}

// groundDevice ties a node to the ground reference. The spice form uses
// a small resistor to the global gnd net; a zero-volt source would be a
// short circuit.
type groundDevice struct{}

func (groundDevice) SpiceLine(id string, nets map[string]string) string {
	return fmt.Sprintf("R%s %s gnd 0.01", id, nets["a"])
}

func (groundDevice) SimDevice(groups map[string]int) sim.Device {
	return &sim.Voltage{A: groups["a"], Volts: 0}
}

// NewGround creates a ground reference with a single port.
func NewGround(parent *Component, role string) *Component {
	return NewAtomic(parent, "gnd", role, []string{"a"}, groundDevice{})
}

// vddDevice ties a node to the supply rail.
type vddDevice struct{}

func (vddDevice) SpiceLine(id string, nets map[string]string) string {
	return fmt.Sprintf("V%s %s gnd %v", id, nets["a"], float64(Voltage))
}

func (vddDevice) SimDevice(groups map[string]int) sim.Device {
	return &sim.Voltage{A: groups["a"], Volts: Voltage}
}

// NewVdd creates a supply-rail source with a single port.
func NewVdd(parent *Component, role string) *Component {
	return NewAtomic(parent, "vdd", role, []string{"a"}, vddDevice{})
}

// resistorDevice is a fixed resistance.
type resistorDevice struct {
	ohms float64
}

func (d resistorDevice) SpiceLine(id string, nets map[string]string) string {
	return fmt.Sprintf("R%s %s %s %v", id, nets["a"], nets["b"], d.ohms)
}

func (d resistorDevice) SimDevice(groups map[string]int) sim.Device {
	return &sim.Resistor{A: groups["a"], B: groups["b"], Ohms: d.ohms}
}

// NewResistor creates a resistor with ports a and b.
func NewResistor(parent *Component, role string, ohms float64) *Component {
	return NewAtomic(parent, "resistor", role,
		[]string{"a", "b"}, resistorDevice{ohms: ohms})
}

// capacitorDevice is a fixed capacitance, initially uncharged.
type capacitorDevice struct {
	farads float64
}

func (d capacitorDevice) SpiceLine(id string, nets map[string]string) string {
	return fmt.Sprintf("C%s %s %s %v ic=0", id, nets["a"], nets["b"], d.farads)
}

func (d capacitorDevice) SimDevice(groups map[string]int) sim.Device {
	return &sim.Capacitor{A: groups["a"], B: groups["b"], Farads: d.farads}
}

// NewCapacitor creates a capacitor with ports a and b.
func NewCapacitor(parent *Component, role string, farads float64) *Component {
	return NewAtomic(parent, "capacitor", role,
		[]string{"a", "b"}, capacitorDevice{farads: farads})
}

// NewPullUp creates a 5 kOhm resistor to an internal supply rail.
func NewPullUp(parent *Component, role string) *Component {
	c := New(parent, "pullup_resistor", role, []string{"a", "_vdd"})

	res := NewResistor(c, "pullup", 5000)
	vdd := NewVdd(c, "vdd")

	c.Connect("a", res.Node("a"))
	c.Connect("_vdd", res.Node("b"))
	c.Connect("_vdd", vdd.Node("a"))
	return c
}

// NewRCFixture is a scratch component used by the temp test: supply,
// series resistor and capacitor to ground.
func NewRCFixture(parent *Component, role string) *Component {
	c := New(parent, "test", role, []string{"v", "gnd", "a"})

	vdd := NewVdd(c, "vdd")
	gnd := NewGround(c, "gnd")
	r1 := NewResistor(c, "R1", 100)
	cap := NewCapacitor(c, "C1", 20e-9)

	c.Connect("v", vdd.Node("a"))
	c.Connect("v", r1.Node("a"))
	c.Connect("a", r1.Node("b"))
	c.Connect("gnd", gnd.Node("a"))
	c.Connect("a", cap.Node("a"))
	c.Connect("gnd", cap.Node("b"))
	return c
}
