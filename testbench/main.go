// The testbench tool runs the circuit test suite against the built-in
// simulator, the external spice adapter, or both. With no test names
// it runs everything except "temp"; tests prefixed "slow" skip spice
// in run-all mode.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/sixbit/sixbit/tester"
)

var (
	verbose     = flag.Bool("verbose", false, "verbose test output")
	interactive = flag.Bool("interactive", false, "interactive mode")
	netlist     = flag.Bool("netlist", false, "dump netlists")
	withSpice   = flag.Bool("spice", false, "run tests against ngspice")
	withSim     = flag.Bool("sim", false, "run tests against the simulator")
)

func init() {
	// Short aliases. glog owns -v, so "-v 1" doubles as verbose mode.
	flag.BoolVar(interactive, "i", false, "interactive mode")
	flag.BoolVar(netlist, "n", false, "dump netlists")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if glog.V(1) {
		*verbose = true
	}

	testsToRun := flag.Args()
	for _, name := range testsToRun {
		if _, ok := tester.Tests[name]; !ok {
			fmt.Fprintln(os.Stderr, "Unknown test:", name)
			fmt.Fprintln(os.Stderr, "           Flags: -i, --interactive, -v, --verbose, -n, --netlist, --spice, --sim")
			fmt.Fprint(os.Stderr, "           Tests: ")
			for i, known := range tester.TestOrder {
				if i > 0 {
					fmt.Fprint(os.Stderr, ", ")
				}
				fmt.Fprint(os.Stderr, known)
			}
			fmt.Fprintln(os.Stderr)
			os.Exit(1)
		}
	}

	allTests := len(testsToRun) == 0
	if allTests {
		for _, name := range tester.TestOrder {
			if name != "temp" {
				testsToRun = append(testsToRun, name)
			}
		}
	}

	spice, sim := *withSpice, *withSim
	if !spice && !sim {
		spice, sim = true, true
	}

	suiteStart := time.Now()

	for _, name := range testsToRun {
		test := tester.Tests[name]
		skipSpice := allTests && len(name) >= 4 && name[:4] == "slow"
		dumpedNetlist := false

		if spice && !skipSpice {
			opt := tester.Options{
				Verbose:     *verbose,
				Interactive: *interactive,
				DumpNetlist: *netlist,
				Context:     "spice",
			}
			start := time.Now()
			if err := tester.RunSpice(test, opt); err != nil {
				fail(name, err)
			}
			fmt.Printf("Time: %.2f\n", time.Since(start).Seconds())
			dumpedNetlist = *netlist
		}

		if sim {
			opt := tester.Options{
				Verbose:     *verbose,
				Interactive: *interactive,
				DumpNetlist: *netlist && !dumpedNetlist,
				Context:     "simulation",
			}
			if err := tester.RunSim(test, opt); err != nil {
				fail(name, err)
			}
		}
	}

	if allTests {
		elapsed := time.Since(suiteStart)
		minutes := int(elapsed.Minutes())
		seconds := elapsed.Seconds() - float64(minutes)*60
		message := fmt.Sprintf(" Total suite time: %dm and %.2fs", minutes, seconds)
		for range message {
			fmt.Print("=")
		}
		fmt.Println()
		fmt.Println(message)
	}
}

func fail(name string, err error) {
	fmt.Fprintf(os.Stderr, "\nTest %q failed:\n%v\n", name, err)
	os.Exit(1)
}
