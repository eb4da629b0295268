package sim

import "fmt"

// A Point is one sample of a piecewise-linear input waveform. Times are
// in microseconds, values in volts.
type Point struct {
	TimeUS float64
	Volts  float64
}

// An Input drives one node group with a piecewise-linear voltage.
type Input struct {
	Group  int
	Points []Point
}

// AddInputs registers a pre-step hook that stamps each input's voltage
// at the current simulation time. Between samples the voltage is the
// linear interpolation of the bracketing points; after the last point
// the last value is held. Simulation time preceding the first point is
// a programmer error.
func AddInputs(s *Simulation, inputs []Input) {
	for i := range inputs {
		if len(inputs[i].Points) == 0 {
			panic("sim: input with no points")
		}
	}

	s.PreStepHooks = append(s.PreStepHooks, func(s *Simulation) {
		for id, input := range inputs {
			tag := fmt.Sprintf("input_%d", id)
			s.StampAbsVoltage(input.Group, input.voltageAt(s.Time), tag)
		}
	})
}

func (in *Input) voltageAt(timeSec float64) float64 {
	timeUS := timeSec * 1e6

	for i := 0; i+1 < len(in.Points); i++ {
		before, after := in.Points[i], in.Points[i+1]
		if !(before.TimeUS <= timeUS && timeUS <= after.TimeUS) {
			continue
		}
		t := (timeUS - before.TimeUS) / (after.TimeUS - before.TimeUS)
		return (1-t)*before.Volts + t*after.Volts
	}

	last := in.Points[len(in.Points)-1]
	if timeUS >= last.TimeUS {
		return last.Volts
	}
	panic(fmt.Sprintf("sim: time %g us precedes input waveform", timeUS))
}
