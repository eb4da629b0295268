// The xdb tool assembles a source file and drops into the interactive
// debugger prompt.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/beevik/term"

	"github.com/sixbit/sixbit/asm"
	"github.com/sixbit/sixbit/debugger"
	"github.com/sixbit/sixbit/emu"
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: xdb <source.xasm>")
		os.Exit(2)
	}

	fmt.Println("Loading... ")

	a := asm.New()
	err := a.AssembleFile(flag.Arg(0))
	if err != nil {
		exitOnError(err)
	}
	program, err := a.Link()
	if err != nil {
		exitOnError(err)
	}

	e := emu.New(program, false)
	d := debugger.New(e)

	// Break on Ctrl-C.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go handleInterrupt(d, c)

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	d.RunCommands(os.Stdin, os.Stdout, interactive)
}

func handleInterrupt(d *debugger.Debugger, c chan os.Signal) {
	for {
		<-c
		d.Break()
	}
}

func exitOnError(err error) {
	var asmErr *asm.AssemblyError
	if errors.As(err, &asmErr) {
		asmErr.Render(os.Stderr)
	} else {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	}
	os.Exit(1)
}
