// Package sim implements a transient circuit simulator based on
// modified nodal analysis. Each timestep the simulator rebuilds a
// symbolic equation system, lets every device stamp its contribution,
// solves for the node voltages and advances time.
package sim

import (
	"fmt"
	"strconv"

	"github.com/golang/glog"

	"github.com/sixbit/sixbit/eqn"
)

// A Device contributes stamps to the equation system once per step.
// Devices are stepped in device-id order, which is the order atomic
// components were discovered during netlist construction.
type Device interface {
	Step(dt float64, s *Simulation, id int)
}

// A Simulation holds the transient state of one circuit run: virtual
// time, the devices, the equation system under construction, and the
// solved voltages of the previous step.
type Simulation struct {
	// Time is the current virtual time in seconds.
	Time float64

	// PreStepHooks run in registration order before devices stamp.
	PreStepHooks []func(s *Simulation)

	numGroups int
	devices   []Device
	system    *eqn.System

	prevVoltages []float64
	prevKnown    []bool
}

// New creates a simulation over numGroups coalesced node groups and the
// given devices.
func New(numGroups int, devices []Device) *Simulation {
	return &Simulation{
		numGroups:    numGroups,
		devices:      devices,
		system:       eqn.NewSystem(),
		prevVoltages: make([]float64, numGroups),
		prevKnown:    make([]bool, numGroups),
	}
}

// System returns the equation system being built for the current step.
func (s *Simulation) System() *eqn.System {
	return s.system
}

// PrevVoltage returns the previous-step voltage of a node group.
// Reading a voltage that was never solved is a programmer error.
func (s *Simulation) PrevVoltage(group int) float64 {
	if !s.prevKnown[group] {
		panic(fmt.Sprintf("sim: no previous voltage for group %d", group))
	}
	return s.prevVoltages[group]
}

func branchVar(pos, neg int, id string) string {
	return fmt.Sprintf("branch_%d_to_%d__%s", pos, neg, id)
}

// StampResistor stamps a conductance between two node groups.
func (s *Simulation) StampResistor(pos, neg int, ohms float64) {
	if ohms <= 0 {
		panic("sim: resistance must be positive")
	}
	conductance := 1 / ohms
	vp, vn := fmt.Sprintf("v%d", pos), fmt.Sprintf("v%d", neg)
	ip, in := fmt.Sprintf("i%d", pos), fmt.Sprintf("i%d", neg)

	s.system.AddTerm(conductance, vp, ip)
	s.system.AddTerm(-conductance, vn, ip)
	s.system.AddTerm(-conductance, vp, in)
	s.system.AddTerm(conductance, vn, in)
}

// StampCurrentSource stamps a fixed current flowing into pos.
func (s *Simulation) StampCurrentSource(pos, neg int, amps float64) {
	// Signs swapped because current is positive flowing in.
	s.system.AddConstant(-amps, fmt.Sprintf("i%d", pos))
	s.system.AddConstant(amps, fmt.Sprintf("i%d", neg))
}

// StampVoltageSource stamps a voltage difference between two node
// groups, introducing a branch-current variable tagged by id.
func (s *Simulation) StampVoltageSource(pos, neg int, volts float64, id string) {
	branch := branchVar(pos, neg, id)
	vp, vn := fmt.Sprintf("v%d", pos), fmt.Sprintf("v%d", neg)

	s.system.AddTerm(1, branch, fmt.Sprintf("i%d", pos))
	s.system.AddTerm(-1, branch, fmt.Sprintf("i%d", neg))

	row := branch + "_voltage"
	s.system.AddTerm(1, vp, row)
	s.system.AddTerm(-1, vn, row)
	s.system.AddConstant(volts, row)
}

// StampAbsVoltage stamps an absolute node voltage against the implicit
// ground reference.
func (s *Simulation) StampAbsVoltage(pos int, volts float64, id string) {
	branch := fmt.Sprintf("branch_%d_gnd__%s", pos, id)

	s.system.AddTerm(1, branch, fmt.Sprintf("i%d", pos))

	row := branch + "_voltage"
	s.system.AddTerm(1, fmt.Sprintf("v%d", pos), row)
	s.system.AddConstant(volts, row)
}

// StampCapacitor stamps a backward-Euler companion model for a
// capacitance between two node groups. The previous-step voltage across
// the capacitor is taken as zero at t=0.
func (s *Simulation) StampCapacitor(a, b int, farads, dt float64, id string) {
	branch := branchVar(a, b, id)
	va, vb := fmt.Sprintf("v%d", a), fmt.Sprintf("v%d", b)

	s.system.AddTerm(1, branch, fmt.Sprintf("i%d", a))
	s.system.AddTerm(-1, branch, fmt.Sprintf("i%d", b))

	cOnH := farads / dt
	var oldVoltage float64
	if s.Time > 0 {
		oldVoltage = s.PrevVoltage(a) - s.PrevVoltage(b)
	}

	row := branch + "_cap_i"
	s.system.AddTerm(cOnH, va, row)
	s.system.AddTerm(-cOnH, vb, row)
	s.system.AddTerm(-1, branch, row)
	s.system.AddConstant(cOnH*oldVoltage, row)
}

// Step advances the simulation by dt: stamp, solve, record voltages.
func (s *Simulation) Step(dt float64) {
	s.system = eqn.NewSystem()

	for _, hook := range s.PreStepHooks {
		hook(s)
	}
	for id, dev := range s.devices {
		dev.Step(dt, s, id)
	}

	if glog.V(2) {
		glog.Info(s.system.DumpEquation())
	}

	solution := s.system.Solve()
	if s.system.Approximated {
		panic("sim: solver fell back to an approximated solution")
	}

	for i := range s.prevKnown {
		s.prevKnown[i] = false
	}
	for name, value := range solution {
		if len(name) < 2 || name[0] != 'v' {
			continue
		}
		group, err := strconv.Atoi(name[1:])
		if err != nil || group < 0 || group >= s.numGroups {
			continue
		}
		s.prevVoltages[group] = value
		s.prevKnown[group] = true
	}

	s.Time += dt
}
