package sim

import (
	"fmt"
	"os"
	"time"
)

// A Sample is the solved output voltages at one point in time.
type Sample struct {
	Time  float64
	Volts []float64
}

// Options control a transient run.
type Options struct {
	TimeStep float64 // seconds per step
	TimeStop float64 // seconds of simulated time
	Progress bool    // emit a live progress line to stderr
}

// Run performs a transient simulation: numGroups node groups, the given
// devices, piecewise-linear inputs, and the node groups whose voltages
// are recorded each step.
func Run(numGroups int, devices []Device, inputs []Input, outputs []int, opt Options) []Sample {
	s := New(numGroups, devices)
	AddInputs(s, inputs)

	var samples []Sample
	start := time.Now()
	lastUpdate := time.Time{}

	for s.Time < opt.TimeStop {
		s.Step(opt.TimeStep)

		volts := make([]float64, len(outputs))
		for i, group := range outputs {
			volts[i] = s.PrevVoltage(group)
		}
		samples = append(samples, Sample{Time: s.Time, Volts: volts})

		if opt.Progress && time.Since(lastUpdate) > 100*time.Millisecond {
			liveUpdate(s, opt.TimeStop, start)
			lastUpdate = time.Now()
		}
	}

	if opt.Progress {
		liveUpdate(s, opt.TimeStop, start)
		fmt.Fprintln(os.Stderr)
	}

	return samples
}

func liveUpdate(s *Simulation, timeStop float64, start time.Time) {
	completion := s.Time / timeStop
	elapsed := time.Since(start).Seconds()

	eta := "  ... "
	if (elapsed > 0.1 && completion > 0.02) || completion >= 1 {
		etaVal := (1 - completion) / (completion / elapsed)
		if etaVal < 0 {
			etaVal = 0
		}
		eta = fmt.Sprintf("%6.2f", etaVal)
	}

	percent := completion * 100
	if percent > 100 {
		percent = 100
	}
	fmt.Fprintf(os.Stderr, "\r %8.2f / %.2f, %6.2f%%   elapsed: %6.2fs   eta: %ss",
		s.Time*1e6, timeStop*1e6, percent, elapsed, eta)
}
