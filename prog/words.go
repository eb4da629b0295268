// Package prog defines the compiled program image shared by the
// assembler and the emulator: a sparse map of 6-bit words over a 2^18
// address space, a label table, and per-word compile tracebacks.
package prog

import "fmt"

const (
	// WordBits is the machine word width.
	WordBits = 6

	// WordValues is the number of distinct word values.
	WordValues = 1 << WordBits

	// AddressSpace is the number of addressable words.
	AddressSpace = 1 << 18

	// AddressWords is the width of a full address in words.
	AddressWords = 3

	// InstructionWords is the width of one instruction.
	InstructionWords = 4
)

// WordsToInt folds big-endian words (word 0 is high) into an integer.
// Words out of range are a programmer error.
func WordsToInt(words []byte) int {
	value := 0
	for _, word := range words {
		if word >= WordValues {
			panic(fmt.Sprintf("prog: word %d out of range", word))
		}
		value = value*WordValues + int(word)
	}
	return value
}

// IntToWords splits a non-negative value into numWords big-endian
// words. Values too large for the width are an error.
func IntToWords(value, numWords int) ([]byte, error) {
	if value < 0 {
		return nil, fmt.Errorf("prog: negative value %d", value)
	}

	var reversed []byte
	for v := value; v != 0; v /= WordValues {
		reversed = append(reversed, byte(v%WordValues))
	}
	if len(reversed) > numWords {
		return nil, fmt.Errorf("prog: value %d does not fit in %d words",
			value, numWords)
	}
	for len(reversed) < numWords {
		reversed = append(reversed, 0)
	}

	words := make([]byte, numWords)
	for i, w := range reversed {
		words[numWords-1-i] = w
	}
	return words, nil
}
