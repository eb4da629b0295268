// Package debugger implements the interactive line-oriented debugger
// over the emulator: step, continue, breakpoints, memory inspection
// and label decoding, with compile tracebacks on every word.
package debugger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/beevik/cmd"

	"github.com/sixbit/sixbit/disasm"
	"github.com/sixbit/sixbit/emu"
	"github.com/sixbit/sixbit/prog"
)

var errQuit = errors.New("quit")

type runState byte

const (
	statePaused runState = iota
	stateSingleShot
	stateRunning
)

var cmds *cmd.Tree

func init() {
	root := cmd.NewTree("Debugger")
	root.AddCommand(cmd.Command{
		Name:        "help",
		Description: "Display help for a command.",
		Usage:       "help [<command>]",
		Data:        (*Debugger).cmdHelp,
	})
	root.AddCommand(cmd.Command{
		Name:  "step",
		Brief: "Execute one instruction",
		Data:  (*Debugger).cmdStep,
	})
	root.AddCommand(cmd.Command{
		Name:  "continue",
		Brief: "Run until breakpoint, interrupt or halt",
		Data:  (*Debugger).cmdContinue,
	})

	bp := cmd.NewTree("Breakpoint")
	root.AddCommand(cmd.Command{
		Name:    "breakpoint",
		Brief:   "Breakpoint commands",
		Subtree: bp,
	})
	bp.AddCommand(cmd.Command{
		Name:  "list",
		Brief: "List breakpoints",
		Data:  (*Debugger).cmdBreakpointList,
	})
	bp.AddCommand(cmd.Command{
		Name:  "add",
		Brief: "Add a breakpoint",
		Usage: "breakpoint add <addr>",
		Data:  (*Debugger).cmdBreakpointAdd,
	})
	bp.AddCommand(cmd.Command{
		Name:  "remove",
		Brief: "Remove a breakpoint",
		Usage: "breakpoint remove <addr>",
		Data:  (*Debugger).cmdBreakpointRemove,
	})

	root.AddCommand(cmd.Command{
		Name:  "inspect",
		Brief: "Inspect an address with its traceback",
		Usage: "inspect <addr>",
		Data:  (*Debugger).cmdInspect,
	})
	root.AddCommand(cmd.Command{
		Name:  ".",
		Brief: "Show current instruction with full traceback",
		Data:  (*Debugger).cmdCurrent,
	})
	root.AddCommand(cmd.Command{
		Name:  "quit",
		Brief: "Quit the debugger",
		Data:  (*Debugger).cmdQuit,
	})

	root.AddShortcut("s", "step")
	root.AddShortcut("c", "continue")
	root.AddShortcut("b", "breakpoint")
	root.AddShortcut("ba", "breakpoint add")
	root.AddShortcut("br", "breakpoint remove")
	root.AddShortcut("bl", "breakpoint list")
	root.AddShortcut("i", "inspect")
	root.AddShortcut("q", "quit")
	root.AddShortcut("?", "help")

	cmds = root
}

// A Debugger owns an emulator and serves the interactive prompt.
type Debugger struct {
	emu *emu.Emulator

	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool

	state       runState
	breakpoints map[int]bool
	lastCmd     *cmd.Selection
	interrupted atomic.Bool
}

// New creates a debugger over an emulator and registers its output
// handler so program output appears inside the prompt session.
func New(e *emu.Emulator) *Debugger {
	d := &Debugger{
		emu:         e,
		state:       statePaused,
		breakpoints: make(map[int]bool),
	}
	e.OutputHandler = func(item any) {
		d.printf("%v ", item)
		d.flush()
	}
	return d
}

// Break requests a transition to PAUSED at the next instruction
// boundary. It is safe to call from a signal handler goroutine.
func (d *Debugger) Break() {
	d.interrupted.Store(true)
}

func (d *Debugger) printf(format string, args ...any) {
	fmt.Fprintf(d.output, format, args...)
}

func (d *Debugger) println(args ...any) {
	fmt.Fprintln(d.output, args...)
}

func (d *Debugger) flush() {
	d.output.Flush()
}

// RunCommands accepts debugger commands from a reader and writes
// results to a writer. With interactive set, a prompt is shown. An
// empty line repeats the last command.
func (d *Debugger) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	d.input = bufio.NewScanner(r)
	d.output = bufio.NewWriter(w)
	d.interactive = interactive

	d.showCurrent(false)

	for {
		if d.interactive {
			d.printf(" dbg >> ")
			d.flush()
		}

		if !d.input.Scan() {
			break
		}

		if err := d.processCommand(strings.TrimSpace(d.input.Text())); err != nil {
			break
		}
		d.flush()
	}
	d.flush()
}

func (d *Debugger) processCommand(line string) error {
	var c cmd.Selection
	if line != "" {
		var err error
		c, err = cmds.Lookup(line)
		switch {
		case err == cmd.ErrNotFound:
			d.println("Command not found.")
			return nil
		case err == cmd.ErrAmbiguous:
			d.println("Command is ambiguous.")
			return nil
		case err != nil:
			d.printf("ERROR: %v.\n", err)
			return nil
		}
	} else if d.lastCmd != nil {
		c = *d.lastCmd
	}

	if c.Command == nil {
		return nil
	}
	if c.Command.Data == nil && c.Command.Subtree != nil {
		d.displayCommands(c.Command.Subtree)
		return nil
	}

	d.lastCmd = &c

	handler := c.Command.Data.(func(*Debugger, cmd.Selection) error)
	return handler(d, c)
}

func (d *Debugger) displayCommands(commands *cmd.Tree) {
	d.printf("%s commands:\n", commands.Title)
	for _, c := range commands.Commands {
		if c.Brief != "" {
			d.printf("    %-12s  %s\n", c.Name, c.Brief)
		}
	}
	d.println()
}

func (d *Debugger) cmdHelp(c cmd.Selection) error {
	switch {
	case len(c.Args) == 0:
		d.displayCommands(cmds)
	default:
		s, err := cmds.Lookup(strings.Join(c.Args, " "))
		if err != nil {
			d.printf("%v\n", err)
			return nil
		}
		if s.Command.Subtree != nil {
			d.displayCommands(s.Command.Subtree)
			return nil
		}
		if s.Command.Usage != "" {
			d.printf("Usage: %s\n", s.Command.Usage)
		}
		if s.Command.Brief != "" {
			d.printf("%s.\n", s.Command.Brief)
		}
	}
	return nil
}

func (d *Debugger) cmdQuit(c cmd.Selection) error {
	return errQuit
}

func (d *Debugger) cmdStep(c cmd.Selection) error {
	d.state = stateSingleShot
	d.runSteps()
	return nil
}

func (d *Debugger) cmdContinue(c cmd.Selection) error {
	d.state = stateRunning
	d.runSteps()
	return nil
}

func (d *Debugger) cmdBreakpointList(c cmd.Selection) error {
	var addrs []int
	for addr := range d.breakpoints {
		addrs = append(addrs, addr)
	}
	sort.Ints(addrs)

	d.println("Addr")
	d.println("------")
	for _, addr := range addrs {
		d.printf("%6d\n", addr)
	}
	return nil
}

func (d *Debugger) cmdBreakpointAdd(c cmd.Selection) error {
	if len(c.Args) < 1 {
		d.println("Syntax: breakpoint add <addr>")
		return nil
	}
	addr, ok := d.decodeAddress(strings.Join(c.Args, " "))
	if !ok {
		return nil
	}
	d.breakpoints[addr] = true
	d.printf("Breakpoint added at %d.\n", addr)
	return nil
}

func (d *Debugger) cmdBreakpointRemove(c cmd.Selection) error {
	if len(c.Args) < 1 {
		d.println("Syntax: breakpoint remove <addr>")
		return nil
	}
	addr, ok := d.decodeAddress(strings.Join(c.Args, " "))
	if !ok {
		return nil
	}
	if !d.breakpoints[addr] {
		d.printf("No breakpoint was set on %d.\n", addr)
		return nil
	}
	delete(d.breakpoints, addr)
	d.printf("Breakpoint at %d removed.\n", addr)
	return nil
}

func (d *Debugger) cmdInspect(c cmd.Selection) error {
	if len(c.Args) < 1 {
		d.println("Syntax: inspect <addr>")
		return nil
	}
	addr, ok := d.decodeAddress(strings.Join(c.Args, " "))
	if !ok {
		return nil
	}
	d.showTraceback(addr, true)
	d.println(disasm.MemoryInfo(d.emu, addr))
	return nil
}

func (d *Debugger) cmdCurrent(c cmd.Selection) error {
	d.showCurrent(true)
	return nil
}

// runSteps advances the emulator according to the run state, stopping
// on halt loops, breakpoints, interrupts, or runtime errors.
func (d *Debugger) runSteps() {
	d.interrupted.Store(false)

	for d.state == stateSingleShot || d.state == stateRunning {
		if err := d.stepOnce(); err != nil {
			d.reportError(err)
			d.state = statePaused
			break
		}

		if d.state == stateSingleShot {
			d.state = statePaused
			break
		}
		if d.breakpoints[d.emu.PC] {
			d.printf("Breakpoint at %d.\n", d.emu.PC)
			d.state = statePaused
			break
		}
		if d.state == statePaused {
			break
		}
		if d.interrupted.Load() {
			d.println("\nInterrupted.")
			d.state = statePaused
			break
		}
	}

	d.showCurrent(false)
}

func (d *Debugger) stepOnce() error {
	if err := d.emu.Step(); err != nil {
		return err
	}

	halted, err := d.emu.IsSelfJump()
	if err != nil {
		return err
	}
	if halted {
		d.println("Break due to halt loop")
		d.state = statePaused
	}
	return nil
}

func (d *Debugger) reportError(err error) {
	d.printf("ERROR: %v\n", err)

	var runtimeErr *emu.RuntimeError
	if errors.As(err, &runtimeErr) && runtimeErr.Traceback != nil {
		for _, line := range runtimeErr.Traceback.Lines() {
			d.println(line)
		}
	}
}

// currentGlobalLabel returns the enclosing global label of the current
// instruction's deepest non-internal frame.
func (d *Debugger) currentGlobalLabel() string {
	word := d.emu.Program.Data[d.emu.PC]
	if word == nil || word.Traceback == nil {
		return ""
	}
	return word.Traceback.DeepestNonInternal().GlobalLabel
}

// decodeAddress accepts a three-word tuple, :global_label,
// .local_label, or a bare decimal integer.
func (d *Debugger) decodeAddress(s string) (int, bool) {
	s = strings.TrimSpace(s)
	parts := strings.Fields(strings.ReplaceAll(s, ",", " "))

	switch {
	case len(parts) == 3:
		words := make([]byte, 3)
		for i, part := range parts {
			v, err := strconv.Atoi(part)
			if err != nil || v < 0 || v >= prog.WordValues {
				d.println("Can't decode multi word address")
				return 0, false
			}
			words[i] = byte(v)
		}
		return prog.WordsToInt(words), true

	case strings.HasPrefix(s, ":"):
		name := s[1:]
		if addr, ok := d.emu.Program.Labels[name]; ok {
			return addr, true
		}
		d.println("Can't find global label", name)
		return 0, false

	case strings.HasPrefix(s, "."):
		global := d.currentGlobalLabel()
		if global == "" {
			d.println("No global prefix to decode local label")
			return 0, false
		}
		name := global + "." + s[1:]
		if addr, ok := d.emu.Program.Labels[name]; ok {
			return addr, true
		}
		d.println("Can't find local label", name)
		return 0, false

	case len(parts) == 1:
		addr, err := strconv.Atoi(s)
		if err != nil || addr < 0 || addr >= prog.AddressSpace {
			d.println("Can't decode integer address")
			return 0, false
		}
		return addr, true

	default:
		d.println("Don't know how to decode address")
		return 0, false
	}
}

// showTraceback prints a word's traceback: the full chain, or just the
// deepest non-internal frame.
func (d *Debugger) showTraceback(address int, full bool) {
	word := d.emu.Program.Data[address]
	if word == nil || word.Traceback == nil {
		d.printf("No traceback at address %d\n", address)
		return
	}

	if full {
		for _, line := range word.Traceback.Lines() {
			d.println(line)
		}
		return
	}

	frame := word.Traceback.DeepestNonInternal()
	origin := fmt.Sprintf("%s, line %d", frame.Origin, frame.LineNum)
	d.printf("%-30s %s\n", origin, strings.TrimRight(frame.LineText, "\n"))
}

// showCurrent prints the machine state and decoded instruction at the
// program counter.
func (d *Debugger) showCurrent(fullTraceback bool) {
	pc := d.emu.PC
	d.printf("PC = %s\tA = %d\n", disasm.MemoryInfo(d.emu, pc), d.emu.A)
	d.printf("\t%s\n", disasm.Instruction(d.emu, pc))

	if labels := d.emu.Program.LabelsAt(pc); len(labels) > 0 {
		prefix := "Labels   "
		for _, label := range labels {
			d.printf("%s :%s\n", prefix, label)
			prefix = strings.Repeat(" ", len(prefix))
		}
	}

	d.showTraceback(pc, fullTraceback)
	d.flush()
}
