package emu

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sixbit/sixbit/asm"
	"github.com/sixbit/sixbit/prog"
)

func init() {
	// Tests run from the package directory; the bundled library lives
	// one level up.
	asm.LibDir = filepath.Join("..", "lib")
}

func assembleSource(t *testing.T, source string) *Emulator {
	t.Helper()
	a := asm.New()
	a.SetOutput(io.Discard)
	require.NoError(t, a.AssembleSource(source, "<test>"))
	p, err := a.Link()
	require.NoError(t, err)
	return New(p, false)
}

func assembleFile(t *testing.T, name string) *Emulator {
	t.Helper()
	a := asm.New()
	a.SetOutput(io.Discard)
	require.NoError(t, a.AssembleFile(filepath.Join("..", "programs", name)))
	p, err := a.Link()
	require.NoError(t, err)
	return New(p, false)
}

func TestCountProgram(t *testing.T) {
	e := assembleFile(t, "count_1.xasm")
	require.NoError(t, e.Run())

	require.Len(t, e.Outputs, 64)
	for i, item := range e.Outputs {
		assert.Equal(t, i, item)
	}
}

func TestNoopProgram(t *testing.T) {
	e := assembleFile(t, "noop.xasm")
	require.NoError(t, e.Run())
	assert.Empty(t, e.Outputs)
}

func TestHelloProgram(t *testing.T) {
	e := assembleFile(t, "hello.xasm")
	require.NoError(t, e.Run())
	assert.Equal(t, []any{"H", "I", "\n"}, e.Outputs)
}

func TestDigitsProgram(t *testing.T) {
	e := assembleFile(t, "digits.xasm")
	require.NoError(t, e.Run())
	assert.Equal(t, []any{"42"}, e.Outputs)
}

func TestIncludedInstructionEncoding(t *testing.T) {
	e := assembleSource(t, "INCLUDE common\nINC_A")

	for i, want := range []byte{16, 0, 0, 0} {
		word := e.Program.Data[i]
		require.NotNil(t, word, "address %d unplaced", i)
		assert.Equal(t, want, word.Value)
	}
	assert.Nil(t, e.Program.Data[4])
}

func TestNonJumpAdvancesPCByFour(t *testing.T) {
	e := assembleSource(t, "INCLUDE common\nINC_A\nINC_A")

	require.NoError(t, e.Step())
	assert.Equal(t, 4, e.PC)
	assert.Equal(t, byte(1), e.A)

	require.NoError(t, e.Step())
	assert.Equal(t, 8, e.PC)
	assert.Equal(t, byte(2), e.A)
}

func TestIncWrapsAt64(t *testing.T) {
	e := assembleSource(t, "INCLUDE common\nINC_A")
	e.A = 63
	require.NoError(t, e.Step())
	assert.Equal(t, byte(0), e.A)
}

func TestJumpSetsPCWithoutAdvancing(t *testing.T) {
	source := `
INCLUDE common
JUMP :dest
INC_A
:dest
INC_A
`
	e := assembleSource(t, source)
	require.NoError(t, e.Step())
	assert.Equal(t, 8, e.PC)
	assert.Equal(t, byte(0), e.A)
}

func TestJumpIfAZero(t *testing.T) {
	source := `
INCLUDE common
JUMP_IF_A_ZERO :dest
INC_A
:dest
INC_A
`
	e := assembleSource(t, source)
	require.NoError(t, e.Step())
	assert.Equal(t, 8, e.PC, "taken when A == 0")

	e2 := assembleSource(t, source)
	e2.A = 5
	require.NoError(t, e2.Step())
	assert.Equal(t, 4, e2.PC, "falls through when A != 0")
}

func TestJumpIfInputReady(t *testing.T) {
	source := `
INCLUDE common
JUMP_IF_INPUT_READY :dest
INC_A
:dest
INC_A
`
	e := assembleSource(t, source)
	require.NoError(t, e.Step())
	assert.Equal(t, 4, e.PC, "falls through when input not ready")

	e2 := assembleSource(t, source)
	e2.InputReady = true
	require.NoError(t, e2.Step())
	assert.Equal(t, 8, e2.PC, "taken when input ready")
}

func TestLoadStore(t *testing.T) {
	source := `
INCLUDE common
:main
LOAD_A .value
INC_A
STORE_A .scratch
HALT

.value
DATA 9
.scratch
DATA 0
`
	e := assembleSource(t, source)
	require.NoError(t, e.Step())
	assert.Equal(t, byte(9), e.A)

	require.NoError(t, e.Step())
	require.NoError(t, e.Step())
	scratch := e.Program.Labels["main.scratch"]
	assert.Equal(t, byte(10), e.Memory[scratch])
}

func TestLoadAWithA(t *testing.T) {
	// The low address word comes from the A register.
	source := `
INCLUDE common
:main
LOAD_A_WITH_A 0, 0
HALT

.table
DATA 20, 21, 22
`
	e := assembleSource(t, source)

	table := e.Program.Labels["main.table"]
	require.Equal(t, 8, table)

	// A selects the low address word within the table.
	e.A = 9
	require.NoError(t, e.Step())
	assert.Equal(t, byte(21), e.A)
}

func TestReadInput(t *testing.T) {
	e := assembleSource(t, "INCLUDE common\nREAD_INPUT")
	e.InputReg = 17
	require.NoError(t, e.Step())
	assert.Equal(t, byte(17), e.A)
}

func TestUnknownOpcodeReportsTraceback(t *testing.T) {
	e := assembleSource(t, "DATA 63, 0, 0, 0")

	err := e.Step()
	require.Error(t, err)

	runtimeErr, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Contains(t, runtimeErr.Msg, "unknown opcode")
	require.NotNil(t, runtimeErr.Traceback)
	assert.Contains(t, runtimeErr.Traceback.LineText, "DATA 63")
}

func TestExecutionOfUnplacedAddressFails(t *testing.T) {
	// A jump with a truncated operand runs off the placed words.
	e := assembleSource(t, "DATA 12, 0, 0")

	err := e.Step()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unplaced")
}

func TestOutputModes(t *testing.T) {
	source := `
INCLUDE common
OUTPUT 1
OUTPUT 0
OUTPUT 2
OUTPUT 2
OUTPUT 3
`
	e := assembleSource(t, source)
	e.A = 3

	for i := 0; i < 5; i++ {
		require.NoError(t, e.Step())
	}

	// A=3: integer 3, char "D", then "33" buffered and flushed.
	assert.Equal(t, []any{3, "D", "33"}, e.Outputs)
}

func TestOutputHandlerObservesEmissions(t *testing.T) {
	e := assembleSource(t, "INCLUDE common\nOUTPUT 1")
	var seen []any
	e.OutputHandler = func(item any) { seen = append(seen, item) }

	require.NoError(t, e.Step())
	assert.Equal(t, []any{0}, seen)
}

func TestIsSelfJump(t *testing.T) {
	e := assembleFile(t, "noop.xasm")
	halted, err := e.IsSelfJump()
	require.NoError(t, err)
	assert.True(t, halted)
}

func TestStringCharsAlphabet(t *testing.T) {
	require.Len(t, StringChars, 37)
	assert.Less(t, len(StringChars), prog.WordValues)
	assert.Equal(t, byte('A'), StringChars[0])
	assert.Equal(t, byte('\n'), StringChars[36])
}
