package asm

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sixbit/sixbit/prog"
)

// assemble links source text and returns the word values at the start
// of memory, nil for unplaced entries.
func assemble(t *testing.T, source string, n int) []any {
	t.Helper()
	p := link(t, source)

	out := make([]any, n)
	for i := 0; i < n; i++ {
		if p.Data[i] != nil {
			out[i] = int(p.Data[i].Value)
		}
	}
	return out
}

func link(t *testing.T, source string) *prog.Program {
	t.Helper()
	a := New()
	a.SetOutput(io.Discard)
	require.NoError(t, a.AssembleSource(source, "<test>"))
	p, err := a.Link()
	require.NoError(t, err)
	return p
}

// assembleError assembles (and links, when parsing succeeds) expecting
// a failure.
func assembleError(t *testing.T, source string) *AssemblyError {
	t.Helper()
	a := New()
	a.SetOutput(io.Discard)
	err := a.AssembleSource(source, "<test>")
	if err == nil {
		_, err = a.Link()
	}
	require.Error(t, err)
	var asmErr *AssemblyError
	require.True(t, errors.As(err, &asmErr), "expected AssemblyError, got %v", err)
	return asmErr
}

func TestDataEmpty(t *testing.T) {
	assert.Equal(t, []any{nil, nil}, assemble(t, "DATA", 2))
}

func TestDataSingleZero(t *testing.T) {
	// data[0] holds 0 and everything after stays empty.
	assert.Equal(t, []any{0, nil, nil, nil}, assemble(t, "DATA 0", 4))
}

func TestDataSequence(t *testing.T) {
	assert.Equal(t, []any{4, 3, nil}, assemble(t, "DATA 4, 3,", 3))
}

func TestDataTwoStatements(t *testing.T) {
	source := "DATA 4, 3\nDATA 5, 6\n"
	assert.Equal(t, []any{4, 3, 5, 6, nil}, assemble(t, source, 5))
}

func TestDataMultiWord(t *testing.T) {
	// 65 = 1*64 + 1, big-endian across two words.
	assert.Equal(t, []any{1, 1, nil}, assemble(t, "DATA 65_2", 3))
}

func TestNumericBases(t *testing.T) {
	assert.Equal(t, []any{5, 10, 15}, assemble(t, "DATA 0b101, 10, 0xf", 3))
}

func TestNumericTooWideFails(t *testing.T) {
	assembleError(t, "DATA 64")
	assembleError(t, "DATA 4096_1")
}

func TestSkipData(t *testing.T) {
	assert.Equal(t, []any{1, nil, nil, 2},
		assemble(t, "DATA 1\nSKIP_DATA 2\nDATA 2", 4))
}

func TestMacroExpansion(t *testing.T) {
	source := `
DEFINE COMMAND DO_SOMETHING a b {
    DEFINE VARIABLE c, 3
    DATA $a, $c, $b
}
DO_SOMETHING 8, 9
`
	assert.Equal(t, []any{8, 3, 9, nil}, assemble(t, source, 4))
}

func TestNestedMacroDefinition(t *testing.T) {
	source := `
DEFINE COMMAND DO_SOMETHING a b {
    DEFINE COMMAND WOW f e g {
        DATA $e, $f, $g
    }
    DEFINE VARIABLE c, 3
    WOW $a, $c, $b
}
DO_SOMETHING 8, 9
`
	assert.Equal(t, []any{3, 8, 9}, assemble(t, source, 3))
}

func TestMacroArityError(t *testing.T) {
	source := `
DEFINE COMMAND PAIR a b {
    DATA $a, $b
}
PAIR 1
`
	err := assembleError(t, source)
	assert.Equal(t, KindParse, err.Kind)
	assert.Contains(t, err.Msg, "expects 2 args")

	// Both the macro frame and the call site frame are present.
	require.NotNil(t, err.Frame)
	require.NotNil(t, err.Frame.Prev)
	assert.Contains(t, err.Frame.Origin, "PAIR")
	assert.Contains(t, err.Frame.Prev.LineText, "PAIR 1")
}

func TestMacroScopeDoesNotLeak(t *testing.T) {
	source := `
DEFINE COMMAND INNER {
    DEFINE VARIABLE hidden, 7
}
INNER
DATA $hidden
`
	err := assembleError(t, source)
	assert.Contains(t, err.Msg, "hidden")
}

func TestGlobalAndLocalLabels(t *testing.T) {
	source := `
:start
DATA 1, 2
.here
DATA 3
:other
.here
DATA 4
`
	a := New()
	a.SetOutput(io.Discard)
	require.NoError(t, a.AssembleSource(source, "<test>"))

	labels := a.Labels()
	assert.Equal(t, 0, labels["start"])
	assert.Equal(t, 2, labels["start.here"])
	assert.Equal(t, 3, labels["other"])
	assert.Equal(t, 3, labels["other.here"])
}

func TestLabelReferenceResolvesAtLink(t *testing.T) {
	source := `
DATA :target
:target
DATA 9
`
	p := link(t, source)

	// The label placed at address 3 resolves to [0 0 3].
	assert.Equal(t, byte(0), p.Data[0].Value)
	assert.Equal(t, byte(0), p.Data[1].Value)
	assert.Equal(t, byte(3), p.Data[2].Value)
	assert.Equal(t, byte(9), p.Data[3].Value)
	assert.Equal(t, 3, p.Labels["target"])
}

func TestUnresolvedLabelIsLinkError(t *testing.T) {
	err := assembleError(t, "DATA :nowhere")
	assert.Equal(t, KindLink, err.Kind)
	assert.Contains(t, err.Msg, "nowhere")
	require.NotNil(t, err.Frame)
	assert.Contains(t, err.Frame.LineText, ":nowhere")
}

func TestDuplicateLabelFails(t *testing.T) {
	err := assembleError(t, ":a\n:a")
	assert.Contains(t, err.Msg, "more than once")
}

func TestLocalLabelWithoutGlobalFails(t *testing.T) {
	err := assembleError(t, ".local\nDATA 1")
	assert.Contains(t, err.Msg, "no global label")
}

func TestCurrentIPConstant(t *testing.T) {
	// $$ is three words wide and holds the ip at its statement.
	source := "DATA 1\nDATA $$"
	p := link(t, source)
	assert.Equal(t, byte(1), p.Data[0].Value)
	assert.Equal(t, byte(0), p.Data[1].Value)
	assert.Equal(t, byte(0), p.Data[2].Value)
	assert.Equal(t, byte(1), p.Data[3].Value)
}

func TestInlineLabelDeclaration(t *testing.T) {
	source := `
:start
DATA 1, %.mark, 2
DATA %.wide=63_2
`
	p := link(t, source)

	// %.mark is zero words wide: it labels address 1 and places
	// nothing.
	assert.Equal(t, 1, p.Labels["start.mark"])
	assert.Equal(t, byte(2), p.Data[1].Value)

	// %.wide=63_2 labels its own placement and evaluates to its
	// initializer.
	assert.Equal(t, 2, p.Labels["start.wide"])
	assert.Equal(t, byte(0), p.Data[2].Value)
	assert.Equal(t, byte(63), p.Data[3].Value)
}

func TestPlacementPastEndOfMemory(t *testing.T) {
	source := "SKIP_DATA 262143_3\nDATA 1, 2"
	err := assembleError(t, source)
	assert.Contains(t, err.Msg, "end of memory")
}

func TestIfCommand(t *testing.T) {
	source := `
IF 1 {
    DATA 5
}
IF 0 {
    DATA 6
}
`
	assert.Equal(t, []any{5, nil}, assemble(t, source, 2))
}

func TestLoopCommand(t *testing.T) {
	source := `
DEFINE VARIABLE i, 0
LOOP more {
    SET VARIABLE more, is_lt($i, 3)
} {
    DATA $i
    SET VARIABLE i, plus($i, 1)
}
`
	assert.Equal(t, []any{0, 1, 2, nil}, assemble(t, source, 4))
}

func TestLoopConditionNeverSet(t *testing.T) {
	source := `
LOOP cond {
    DATA 1
} {
    DATA 2
}
`
	err := assembleError(t, source)
	assert.Contains(t, err.Msg, "never set")
}

func TestLoopTrueFalseIdentifiers(t *testing.T) {
	source := `
LOOP cond {
    SET VARIABLE cond, FALSE
} {
    DATA 1
}
DATA 9
`
	assert.Equal(t, []any{9}, assemble(t, source, 1))
}

func TestUpAffectsOuterScope(t *testing.T) {
	source := `
DEFINE COMMAND EXPORTER {
    UP {
        DEFINE VARIABLE exported, 5
    }
}
EXPORTER
DATA $exported
`
	assert.Equal(t, []any{5}, assemble(t, source, 1))
}

func TestUpAtTopLevelFails(t *testing.T) {
	source := `
UP {
    DATA 1
}
`
	err := assembleError(t, source)
	assert.Contains(t, err.Msg, "top-level")
}

func TestAssert(t *testing.T) {
	assert.Equal(t, []any{1}, assemble(t, "ASSERT 1\nDATA 1", 1))

	err := assembleError(t, "ASSERT 0")
	assert.Contains(t, err.Msg, "assertion failed")
}

func TestSetVariableWithoutDefinitionFails(t *testing.T) {
	err := assembleError(t, "SET VARIABLE nope, 1")
	assert.Contains(t, err.Msg, "not defined")
}

func TestVariableShadowingInSameScopeFails(t *testing.T) {
	source := "DEFINE VARIABLE x, 1\nDEFINE VARIABLE x, 2"
	err := assembleError(t, source)
	assert.Contains(t, err.Msg, "already defined")
}

func TestRemComments(t *testing.T) {
	source := `
REM full line comment
DATA 1 REM trailing comment
DATA 2
`
	assert.Equal(t, []any{1, 2}, assemble(t, source, 2))
}

func TestCarriageReturnsStripped(t *testing.T) {
	assert.Equal(t, []any{1, 2}, assemble(t, "DATA 1\r\nDATA 2\r\n", 2))
}

func TestUnknownCommandFails(t *testing.T) {
	err := assembleError(t, "FLUMMOX 1")
	assert.Contains(t, err.Msg, "unknown command")
}

func TestTracebackChainThroughMacros(t *testing.T) {
	source := `
DEFINE COMMAND OUTER {
    INNER
}
DEFINE INTERNAL_COMMAND INNER {
    DATA 7
}
OUTER
`
	p := link(t, source)
	word := p.Data[0]
	require.NotNil(t, word)
	require.NotNil(t, word.Traceback)

	// Innermost frame is the internal macro body; the deepest
	// non-internal frame is the OUTER body line invoking INNER.
	assert.True(t, word.Traceback.Internal)
	frame := word.Traceback.DeepestNonInternal()
	assert.False(t, frame.Internal)
	assert.Contains(t, frame.LineText, "INNER")

	// The outermost frame is the OUTER call site.
	chain := word.Traceback.Chain()
	assert.Contains(t, chain[0].LineText, "OUTER")
}

func TestTracebackGlobalLabel(t *testing.T) {
	source := `
:main
DATA 1
`
	p := link(t, source)
	assert.Equal(t, "main", p.Data[0].Traceback.GlobalLabel)
}

func TestAccessFlagsAllPermissive(t *testing.T) {
	p := link(t, "DATA 1, 2, 3")
	for addr := 0; addr < 3; addr++ {
		word := p.Data[addr]
		require.NotNil(t, word)
		assert.True(t, word.ForExecution)
		assert.True(t, word.ForReading)
		assert.True(t, word.ForWriting)
	}
}

func TestFunctions(t *testing.T) {
	source := `
DATA is_lt(1, 2), is_lt(2, 1)
DATA is_eq(3, 3), is_eq(3, 4), is_eq(abc, abc), is_eq(abc, abd)
DATA is_pow_of_two(8), is_pow_of_two(6), is_pow_of_two(1)
DATA not(0), not(5)
DATA plus(2, 3), minus(5, 2), mod(7, 3)
DATA zero_extend_numeric(5, 2)
DATA hi(65_2)
`
	assert.Equal(t, []any{
		1, 0,
		1, 0, 1, 0,
		1, 0, 0,
		1, 0,
		5, 3, 1,
		0, 5,
		1,
	}, assemble(t, source, 17))
}

func TestMakeFunction(t *testing.T) {
	assert.Equal(t, []any{12, 0, 0, 8},
		assemble(t, "DATA make(4, 12, 8_3)", 4))

	err := assembleError(t, "DATA make(3, 1, 2)")
	assert.Contains(t, err.Msg, "make")
}

func TestMakeDefersLabels(t *testing.T) {
	source := `
DATA make(4, 12, :dest)
:dest
DATA 9
`
	p := link(t, source)
	assert.Equal(t, byte(12), p.Data[0].Value)
	assert.Equal(t, byte(0), p.Data[1].Value)
	assert.Equal(t, byte(0), p.Data[2].Value)
	assert.Equal(t, byte(4), p.Data[3].Value)
}

func TestConcatIdentAndReadVar(t *testing.T) {
	source := `
DEFINE VARIABLE value_a, 7
DATA read_var(concat_ident(value, _a))
`
	assert.Equal(t, []any{7}, assemble(t, source, 1))
}

func TestPlusOverflowFails(t *testing.T) {
	err := assembleError(t, "DATA plus(63, 1)")
	assert.Contains(t, err.Msg, "overflow")
}

func TestMinusNegativeFails(t *testing.T) {
	err := assembleError(t, "DATA minus(2, 5)")
	assert.Contains(t, err.Msg, "negative")
}

func TestModByZeroFails(t *testing.T) {
	err := assembleError(t, "DATA mod(5, 0)")
	assert.Contains(t, err.Msg, "mod by zero")
}

func TestArithmeticOnLabelFailsAtParse(t *testing.T) {
	// Labels resolve at link; arithmetic needs the value at parse
	// time.
	source := `
DATA plus(:later, 1)
:later
DATA 1
`
	err := assembleError(t, source)
	assert.Equal(t, KindParse, err.Kind)
	assert.Contains(t, err.Msg, "not ready")
}

func TestIncludeMissingFileFails(t *testing.T) {
	err := assembleError(t, "INCLUDE definitely_not_a_real_library")
	assert.Contains(t, err.Msg, "cannot find include")
}

func TestDebugOut(t *testing.T) {
	a := New()
	var sb captureWriter
	a.SetOutput(&sb)
	require.NoError(t, a.AssembleSource("DEBUG_OUT 5, abc", "<test>"))
	assert.Contains(t, sb.String(), "5 abc")
}

type captureWriter struct {
	data []byte
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *captureWriter) String() string {
	return string(w.data)
}
