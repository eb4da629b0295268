package prog

import "fmt"

// A Word is one placed memory word with its compile provenance and
// access permissions.
type Word struct {
	Value     byte
	Traceback *Frame

	ForExecution bool
	ForReading   bool
	ForWriting   bool
}

// A Program is the linked image handed from the assembler to the
// emulator. It is read-only after construction.
type Program struct {
	// Data holds one entry per address; nil means never placed.
	Data []*Word

	// Labels maps label names to addresses.
	Labels map[string]int

	addressToLabels map[int][]string
}

// NewProgram builds a program from placed words and the label table.
// The inverse address-to-labels map is computed once for the debugger.
func NewProgram(data []*Word, labels map[string]int) *Program {
	if len(data) != AddressSpace {
		panic(fmt.Sprintf("prog: image has %d words, want %d",
			len(data), AddressSpace))
	}

	p := &Program{
		Data:            data,
		Labels:          labels,
		addressToLabels: make(map[int][]string),
	}
	for label, address := range labels {
		p.addressToLabels[address] = append(p.addressToLabels[address], label)
	}
	return p
}

// LabelsAt returns the labels declared at an address.
func (p *Program) LabelsAt(address int) []string {
	return p.addressToLabels[address]
}
