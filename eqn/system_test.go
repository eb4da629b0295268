package eqn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Solves 2x + 3y = -11 and x - y = 12, giving x = 5, y = -7.
func TestSolveTwoByTwo(t *testing.T) {
	s := NewSystem()

	s.AddTerm(2, "x", "1")
	s.AddTerm(3, "y", "1")
	s.AddConstant(-11, "1")

	s.AddTerm(-1, "y", "2")
	s.AddTerm(1, "x", "2")
	s.AddConstant(12, "2")

	result := s.Solve()

	assert.InDelta(t, 5, result["x"], 1e-9)
	assert.InDelta(t, -7, result["y"], 1e-9)
	assert.False(t, s.Approximated)
}

func TestDuplicateTermsSum(t *testing.T) {
	s := NewSystem()

	// 1x + 1x + 1x = 9  ->  x = 3
	s.AddTerm(1, "x", "r")
	s.AddTerm(1, "x", "r")
	s.AddTerm(1, "x", "r")
	s.AddConstant(9, "r")

	result := s.Solve()
	assert.InDelta(t, 3, result["x"], 1e-9)
}

func TestDuplicateConstantsSum(t *testing.T) {
	s := NewSystem()

	s.AddTerm(2, "x", "r")
	s.AddConstant(3, "r")
	s.AddConstant(5, "r")

	result := s.Solve()
	assert.InDelta(t, 4, result["x"], 1e-9)
}

func TestNonSquarePanics(t *testing.T) {
	s := NewSystem()
	s.AddTerm(1, "x", "r1")
	s.AddTerm(1, "y", "r1")
	s.AddConstant(1, "r1")

	assert.Panics(t, func() { s.Solve() })
}

func TestSingularFallsBackToLeastSquares(t *testing.T) {
	s := NewSystem()

	// Two identical rows: singular, but consistent.
	s.AddTerm(1, "x", "r1")
	s.AddTerm(1, "y", "r1")
	s.AddConstant(2, "r1")
	s.AddTerm(1, "x", "r2")
	s.AddTerm(1, "y", "r2")
	s.AddConstant(2, "r2")

	result := s.Solve()

	assert.True(t, s.Approximated)
	assert.InDelta(t, 2, result["x"]+result["y"], 1e-9)
}

func TestDumpEquationStable(t *testing.T) {
	build := func() *System {
		s := NewSystem()
		s.AddTerm(2, "x", "first")
		s.AddTerm(3, "y", "first")
		s.AddConstant(-11, "first")
		s.AddTerm(1, "x", "second")
		s.AddTerm(-1, "y", "second")
		s.AddConstant(12, "second")
		return s
	}

	a := build().DumpEquation()
	b := build().DumpEquation()
	require.Equal(t, a, b)

	assert.Contains(t, a, "first)")
	assert.Contains(t, a, "2 * x")
	assert.Contains(t, a, "= -11")
}

func TestIndexOrderIsFirstAppearance(t *testing.T) {
	s := NewSystem()
	s.AddTerm(1, "b", "r2")
	s.AddTerm(1, "a", "r1")
	s.AddConstant(1, "r2")
	s.AddConstant(2, "r1")

	assert.Equal(t, 2, s.NumRows())
	assert.Equal(t, 2, s.NumVars())
	assert.Equal(t, []string{"b", "a"}, s.varNames)
	assert.Equal(t, []string{"r2", "r1"}, s.rowNames)
}
