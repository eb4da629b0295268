// The xasm tool assembles a source file and prints a placement dump on
// success. Assembly errors are rendered as framed tracebacks.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sixbit/sixbit/asm"
)

var verbose = flag.Bool("v", false, "verbose assembly output")

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: xasm [-v] <source.xasm>")
		os.Exit(2)
	}

	a := asm.New()
	a.SetVerbose(*verbose)

	err := a.AssembleFile(flag.Arg(0))
	if err == nil {
		_, err = a.Link()
	}
	if err != nil {
		var asmErr *asm.AssemblyError
		if errors.As(err, &asmErr) {
			asmErr.Render(os.Stderr)
		} else {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Print(a.DumpPlacements())
}
