package sim

import "fmt"

// MOSFET model constants. The on/off resistance model is a binary
// switch on the previous-step gate-source voltage.
const (
	mosfetStartupOhms = 10e6
	mosfetOnOhms      = 5.3
	mosfetOffOhms     = 200e3
	mosfetGateFarads  = 50e-12
	mosfetThreshold   = 3.0
)

// A Resistor stamps a fixed conductance between two node groups.
type Resistor struct {
	A    int
	B    int
	Ohms float64
}

func (r *Resistor) Step(dt float64, s *Simulation, id int) {
	s.StampResistor(r.A, r.B, r.Ohms)
}

// A Voltage pins a node group to an absolute voltage.
type Voltage struct {
	A     int
	Volts float64
}

func (v *Voltage) Step(dt float64, s *Simulation, id int) {
	s.StampAbsVoltage(v.A, v.Volts, fmt.Sprintf("%d", id))
}

// A Capacitor stamps a backward-Euler companion model each step.
type Capacitor struct {
	A      int
	B      int
	Farads float64
}

func (c *Capacitor) Step(dt float64, s *Simulation, id int) {
	s.StampCapacitor(c.A, c.B, c.Farads, dt, fmt.Sprintf("%d", id))
}

// A Mosfet is an N-channel MOSFET reduced to a switched drain-source
// resistance plus a gate-source capacitance. At t=0 the channel stamps
// a large series resistance; afterwards the previous-step gate-source
// voltage selects the on or off resistance.
type Mosfet struct {
	Drain  int
	Gate   int
	Source int
}

func (m *Mosfet) Step(dt float64, s *Simulation, id int) {
	if s.Time == 0 {
		s.StampResistor(m.Drain, m.Source, mosfetStartupOhms)
	} else {
		vgs := s.PrevVoltage(m.Gate) - s.PrevVoltage(m.Source)
		if vgs > mosfetThreshold {
			s.StampResistor(m.Drain, m.Source, mosfetOnOhms)
		} else {
			s.StampResistor(m.Drain, m.Source, mosfetOffOhms)
		}
	}

	s.StampCapacitor(m.Gate, m.Source, mosfetGateFarads, dt,
		fmt.Sprintf("%d_gs", id))
}
