// Package disasm decodes instruction quads of the 6-bit machine into
// human-readable strings for the debugger.
package disasm

import (
	"fmt"

	"github.com/sixbit/sixbit/emu"
	"github.com/sixbit/sixbit/prog"
)

// MemoryInfo formats an address with its word decomposition and the
// value stored there.
func MemoryInfo(e *emu.Emulator, address int) string {
	words, err := prog.IntToWords(address, prog.AddressWords)
	if err != nil {
		return fmt.Sprintf("<bad address %d>", address)
	}
	return fmt.Sprintf("<%d; %v = %d>", address, words, e.Memory[address])
}

// Instruction renders the instruction at the given program-counter
// address: mnemonic plus decoded operand.
func Instruction(e *emu.Emulator, pc int) string {
	words := make([]byte, prog.InstructionWords)
	for i := range words {
		if pc+i >= prog.AddressSpace || e.Program.Data[pc+i] == nil {
			return "<unplaced>"
		}
		words[i] = e.Memory[pc+i]
	}

	opcode := words[0]
	addr := prog.WordsToInt(words[1:])

	prefix := fmt.Sprintf("opcode %d (0b%06b) ", opcode, opcode)

	switch opcode {
	case emu.OpLoadA:
		return prefix + "LOAD_A " + MemoryInfo(e, addr)
	case emu.OpStoreA:
		return prefix + "STORE_A " + MemoryInfo(e, addr)
	case emu.OpLoadAWithA:
		withA := prog.WordsToInt([]byte{words[1], words[2], e.A})
		return prefix + "LOAD_A_WITH_A " + MemoryInfo(e, withA)
	case emu.OpIncA:
		return prefix + "INC_A"
	case emu.OpJump:
		return prefix + "JUMP " + MemoryInfo(e, addr)
	case emu.OpJumpIfAZero:
		return prefix + "JUMP_IF_A_ZERO " + MemoryInfo(e, addr)
	case emu.OpJumpIfInputReady:
		return prefix + "JUMP_IF_INPUT_READY " + MemoryInfo(e, addr)
	case emu.OpOutput:
		return prefix + fmt.Sprintf("OUTPUT %d", words[1])
	case emu.OpReadInput:
		return prefix + "READ_INPUT"
	default:
		return prefix + "UNKNOWN INSTRUCTION"
	}
}
