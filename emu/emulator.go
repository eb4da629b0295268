// Package emu implements the word-addressable CPU emulator driven by a
// compiled program image. Execution is deterministic; every memory
// access is checked against the placed word's access flags, and
// runtime errors are reported through the instruction's compile
// traceback.
package emu

import (
	"fmt"
	"strings"

	"github.com/sixbit/sixbit/prog"
)

// StringChars is the fixed output alphabet indexed by OUTPUT mode 0.
const StringChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789\n"

// Opcode bit patterns.
const (
	OpLoadA            = 0b100000
	OpStoreA           = 0b110000
	OpLoadAWithA       = 0b101000
	OpIncA             = 0b010000
	OpJump             = 0b001100
	OpJumpIfAZero      = 0b001010
	OpJumpIfInputReady = 0b001001
	OpOutput           = 0b000010
	OpReadInput        = 0b000001
)

// A RuntimeError is an invariant violation during execution: unknown
// opcode, access-flag violation, or a malformed machine state. It
// carries the offending instruction's traceback when one exists.
type RuntimeError struct {
	Msg       string
	Address   int
	Traceback *prog.Frame
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("emu: %s (at address %d)", e.Msg, e.Address)
}

// An Emulator executes a compiled program image.
type Emulator struct {
	// Memory mirrors the program's placed word values.
	Memory []byte

	// Program is the read-only compiled image with flags and
	// tracebacks.
	Program *prog.Program

	PC         int  // program counter, always a multiple of 4
	A          byte // 6-bit accumulator
	InputReg   byte
	InputReady bool

	// Outputs is the ordered log of emitted items, each a string or
	// an int.
	Outputs []any

	// OutputHandler observes each emitted item as it happens.
	OutputHandler func(item any)

	partialOutput []string
	verbose       bool
}

// New creates an emulator over a linked program.
func New(p *prog.Program, verbose bool) *Emulator {
	e := &Emulator{
		Memory:  make([]byte, prog.AddressSpace),
		Program: p,
		verbose: verbose,
	}
	for address, word := range p.Data {
		if word != nil {
			e.Memory[address] = word.Value
		}
	}
	return e
}

func (e *Emulator) runtimeError(addr int, format string, args ...any) *RuntimeError {
	err := &RuntimeError{
		Msg:     fmt.Sprintf(format, args...),
		Address: addr,
	}
	if addr >= 0 && addr < prog.AddressSpace && e.Program.Data[addr] != nil {
		err.Traceback = e.Program.Data[addr].Traceback
	}
	return err
}

// errorAtCurrent reports an error blamed on the current instruction.
func (e *Emulator) errorAtCurrent(format string, args ...any) *RuntimeError {
	return e.runtimeError(e.PC, format, args...)
}

// ReadRAM reads a word, asserting the address was placed with the
// reading flag.
func (e *Emulator) ReadRAM(address int) (byte, error) {
	if address < 0 || address >= prog.AddressSpace {
		return 0, e.errorAtCurrent("read of address %d out of range", address)
	}
	word := e.Program.Data[address]
	if word == nil {
		return 0, e.errorAtCurrent("read of unplaced address %d", address)
	}
	if !word.ForReading {
		return 0, e.errorAtCurrent("read of address %d not marked for reading", address)
	}
	return e.Memory[address], nil
}

// WriteRAM writes a word, asserting the address was placed with the
// writing flag.
func (e *Emulator) WriteRAM(address int, value byte) (err error) {
	if address < 0 || address >= prog.AddressSpace {
		return e.errorAtCurrent("write of address %d out of range", address)
	}
	word := e.Program.Data[address]
	if word == nil {
		return e.errorAtCurrent("write of unplaced address %d", address)
	}
	if !word.ForWriting {
		return e.errorAtCurrent("write of address %d not marked for writing", address)
	}
	e.Memory[address] = value
	return nil
}

// readFromPC reads one of the four instruction words at the program
// counter, asserting the execution flag.
func (e *Emulator) readFromPC(offset int) (byte, error) {
	if offset < 0 || offset >= prog.InstructionWords {
		panic("emu: instruction offset out of range")
	}
	if e.PC%prog.InstructionWords != 0 {
		return 0, e.errorAtCurrent("program counter %d not aligned", e.PC)
	}

	address := e.PC + offset
	if address >= prog.AddressSpace {
		return 0, e.errorAtCurrent("instruction fetch past end of memory")
	}
	word := e.Program.Data[address]
	if word == nil {
		return 0, e.errorAtCurrent("execution of unplaced address %d", address)
	}
	if !word.ForExecution {
		return 0, e.errorAtCurrent("address %d not marked for execution", address)
	}
	return e.Memory[address], nil
}

func (e *Emulator) perform(item any) {
	if e.verbose {
		fmt.Printf("%v ", item)
	}
	e.Outputs = append(e.Outputs, item)
	if e.OutputHandler != nil {
		e.OutputHandler(item)
	}
}

// fetchAddress reads instruction words 1..3 as a big-endian address.
func (e *Emulator) fetchAddress() (int, error) {
	var words [prog.AddressWords]byte
	for i := range words {
		w, err := e.readFromPC(1 + i)
		if err != nil {
			return 0, err
		}
		words[i] = w
	}
	return prog.WordsToInt(words[:]), nil
}

// Step executes one instruction. Opcode decoding is a bit-test cascade
// on the 6-bit opcode word.
func (e *Emulator) Step() error {
	opcode, err := e.readFromPC(0)
	if err != nil {
		return err
	}

	didJump := false

	switch {
	case opcode&0b100000 != 0:
		// Memory I/O.
		if opcode != OpLoadA && opcode != OpStoreA && opcode != OpLoadAWithA {
			return e.errorAtCurrent("unknown opcode: 0b%06b", opcode)
		}

		hi, err := e.readFromPC(1)
		if err != nil {
			return err
		}
		mid, err := e.readFromPC(2)
		if err != nil {
			return err
		}

		var low byte
		if opcode&0b001000 != 0 {
			low = e.A
		} else {
			low, err = e.readFromPC(3)
			if err != nil {
				return err
			}
		}

		address := prog.WordsToInt([]byte{hi, mid, low})
		if opcode&0b010000 != 0 {
			if err := e.WriteRAM(address, e.A); err != nil {
				return err
			}
		} else {
			value, err := e.ReadRAM(address)
			if err != nil {
				return err
			}
			e.A = value
		}

	case opcode&0b010000 != 0:
		// ALU increment.
		if opcode != OpIncA {
			return e.errorAtCurrent("unknown opcode: 0b%06b", opcode)
		}
		e.A = (e.A + 1) % prog.WordValues

	case opcode&0b001000 != 0:
		// Jump family.
		if opcode != OpJump && opcode != OpJumpIfAZero && opcode != OpJumpIfInputReady {
			return e.errorAtCurrent("unknown opcode: 0b%06b", opcode)
		}

		taken := true
		if opcode&0b000010 != 0 {
			taken = e.A == 0
		}
		if opcode&0b000001 != 0 {
			taken = e.InputReady
		}

		if taken {
			target, err := e.fetchAddress()
			if err != nil {
				return err
			}
			if target%prog.InstructionWords != 0 {
				return e.errorAtCurrent("jump target %d not aligned", target)
			}
			e.PC = target
			didJump = true
		}

	case opcode&0b000010 != 0:
		// Output.
		if opcode != OpOutput {
			return e.errorAtCurrent("unknown opcode: 0b%06b", opcode)
		}
		mode, err := e.readFromPC(1)
		if err != nil {
			return err
		}

		switch mode {
		case 0:
			if int(e.A) >= len(StringChars) {
				return e.errorAtCurrent("A register %d outside output alphabet", e.A)
			}
			e.perform(string(StringChars[e.A]))
		case 1:
			e.perform(int(e.A))
		case 2:
			e.partialOutput = append(e.partialOutput, fmt.Sprintf("%d", e.A))
		case 3:
			e.perform(strings.Join(e.partialOutput, ""))
			e.partialOutput = nil
		default:
			return e.errorAtCurrent("unknown output mode %d", mode)
		}

	case opcode&0b000001 != 0:
		if opcode != OpReadInput {
			return e.errorAtCurrent("unknown opcode: 0b%06b", opcode)
		}
		e.A = e.InputReg

	default:
		return e.errorAtCurrent("unknown opcode: 0b%06b", opcode)
	}

	if !didJump {
		e.PC += prog.InstructionWords
	}
	return nil
}

// IsSelfJump reports whether the next instruction is an unconditional
// jump to itself, the conventional halt.
func (e *Emulator) IsSelfJump() (bool, error) {
	opcode, err := e.readFromPC(0)
	if err != nil {
		return false, err
	}
	if opcode != OpJump {
		return false, nil
	}

	target, err := e.fetchAddress()
	if err != nil {
		return false, err
	}
	return target == e.PC, nil
}

// Run steps the emulator until it reaches a halt loop.
func (e *Emulator) Run() error {
	for {
		halted, err := e.IsSelfJump()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
		if err := e.Step(); err != nil {
			return err
		}
	}
}
