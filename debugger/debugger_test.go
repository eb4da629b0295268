package debugger

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sixbit/sixbit/asm"
	"github.com/sixbit/sixbit/emu"
)

func init() {
	asm.LibDir = filepath.Join("..", "lib")
}

func makeDebugger(t *testing.T, source string) *Debugger {
	t.Helper()
	a := asm.New()
	a.SetOutput(io.Discard)
	require.NoError(t, a.AssembleSource(source, "<test>"))
	p, err := a.Link()
	require.NoError(t, err)
	return New(emu.New(p, false))
}

const countSource = `
INCLUDE common

:start
OUTPUT 1
INC_A
.loop
JUMP_IF_A_ZERO :done
JUMP :start

:done
HALT
`

// run feeds a command script to the debugger and returns the output.
func run(d *Debugger, script string) string {
	var out strings.Builder
	d.RunCommands(strings.NewReader(script), &out, false)
	return out.String()
}

func TestDecodeAddressForms(t *testing.T) {
	d := makeDebugger(t, countSource)
	d.output = bufio.NewWriter(io.Discard)

	addr, ok := d.decodeAddress("0 1 2")
	require.True(t, ok)
	assert.Equal(t, 66, addr)

	addr, ok = d.decodeAddress(":done")
	require.True(t, ok)
	assert.Equal(t, 16, addr)

	// The local label resolves against the current instruction's
	// enclosing global label.
	addr, ok = d.decodeAddress(".loop")
	require.True(t, ok)
	assert.Equal(t, 8, addr)

	addr, ok = d.decodeAddress("12")
	require.True(t, ok)
	assert.Equal(t, 12, addr)

	_, ok = d.decodeAddress(":missing")
	assert.False(t, ok)
}

func TestStepAndContinue(t *testing.T) {
	d := makeDebugger(t, countSource)

	out := run(d, "step\ncontinue\n")
	assert.Contains(t, out, "Break due to halt loop")

	// The program ran to completion and logged its outputs.
	assert.Len(t, d.emu.Outputs, 64)
}

func TestBreakpointStopsRun(t *testing.T) {
	d := makeDebugger(t, countSource)

	out := run(d, "breakpoint add :done\ncontinue\n")
	assert.Contains(t, out, "Breakpoint added at 16.")
	assert.Contains(t, out, "Breakpoint at 16.")
	assert.Equal(t, 16, d.emu.PC)
}

func TestEmptyLineRepeatsLastCommand(t *testing.T) {
	d := makeDebugger(t, countSource)

	run(d, "step\n\n")
	// Two steps executed: OUTPUT then INC_A.
	assert.Equal(t, 8, d.emu.PC)
}

func TestInspectShowsTraceback(t *testing.T) {
	d := makeDebugger(t, countSource)

	out := run(d, "inspect :done\n")
	assert.Contains(t, out, "HALT")
}

func TestShortcuts(t *testing.T) {
	d := makeDebugger(t, countSource)

	run(d, "s\n")
	assert.Equal(t, 4, d.emu.PC)
}
