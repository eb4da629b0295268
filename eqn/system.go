// Package eqn builds small systems of linear equations addressed by
// symbolic row and variable names, and solves them with gonum.
package eqn

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// rcond used to estimate the effective rank during the least-squares
// fallback.
const rankTolerance = 1e-12

// An entry is a single accumulated coefficient. Duplicate (row, col)
// pairs are legal and sum at solve time.
type entry struct {
	row   int
	col   int
	coeff float64
}

// A System accumulates terms of a square linear system Ax = b. Rows and
// variables are addressed by name; dense indices are assigned in
// first-appearance order and remain stable for the lifetime of the
// system.
type System struct {
	vars     map[string]int
	varNames []string
	rows     map[string]int
	rowNames []string

	entries []entry
	consts  []float64

	// Approximated is raised when the direct solve fails and the
	// least-squares fallback produced the solution instead.
	Approximated bool
}

// NewSystem creates an empty equation system.
func NewSystem() *System {
	return &System{
		vars: make(map[string]int),
		rows: make(map[string]int),
	}
}

func (s *System) varIndex(name string) int {
	if i, ok := s.vars[name]; ok {
		return i
	}
	i := len(s.varNames)
	s.vars[name] = i
	s.varNames = append(s.varNames, name)
	return i
}

func (s *System) rowIndex(name string) int {
	if i, ok := s.rows[name]; ok {
		return i
	}
	i := len(s.rowNames)
	s.rows[name] = i
	s.rowNames = append(s.rowNames, name)
	s.consts = append(s.consts, 0)
	return i
}

// AddTerm accumulates A[row, var] += coeff.
func (s *System) AddTerm(coeff float64, varName, rowName string) {
	col := s.varIndex(varName)
	row := s.rowIndex(rowName)
	s.entries = append(s.entries, entry{row: row, col: col, coeff: coeff})
}

// AddConstant accumulates b[row] += constant.
func (s *System) AddConstant(constant float64, rowName string) {
	row := s.rowIndex(rowName)
	s.consts[row] += constant
}

// NumRows returns the number of distinct rows seen so far.
func (s *System) NumRows() int {
	return len(s.rowNames)
}

// NumVars returns the number of distinct variables seen so far.
func (s *System) NumVars() int {
	return len(s.varNames)
}

// matrix folds the accumulated entries into a dense matrix.
func (s *System) matrix() *mat.Dense {
	n := len(s.rowNames)
	a := mat.NewDense(n, n, nil)
	for _, e := range s.entries {
		a.Set(e.row, e.col, a.At(e.row, e.col)+e.coeff)
	}
	return a
}

// Solve materializes the system and solves it. A system with a
// different number of rows and variables is a programmer error. If the
// direct solve fails, the solution is approximated by SVD least squares
// and the Approximated flag is raised.
func (s *System) Solve() map[string]float64 {
	if len(s.rowNames) != len(s.varNames) {
		panic(fmt.Sprintf("eqn: system is not square: %d rows, %d vars",
			len(s.rowNames), len(s.varNames)))
	}

	a := s.matrix()
	b := mat.NewVecDense(len(s.consts), append([]float64(nil), s.consts...))

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		var svd mat.SVD
		if !svd.Factorize(a, mat.SVDThin) {
			panic("eqn: SVD factorization failed")
		}
		rank := svd.Rank(rankTolerance)
		svd.SolveVecTo(&x, b, rank)
		s.Approximated = true
	}

	solution := make(map[string]float64, len(s.varNames))
	for i, name := range s.varNames {
		solution[name] = x.AtVec(i)
	}
	return solution
}

// DumpEquation renders the system deterministically, one row per line,
// in row and term first-appearance order.
func (s *System) DumpEquation() string {
	lines := make([][]string, len(s.rowNames))
	for i, name := range s.rowNames {
		lines[i] = []string{fmt.Sprintf("%20s)", name)}
	}

	folded := s.matrix()

	type coord struct{ row, col int }
	done := make(map[coord]bool)
	for _, e := range s.entries {
		c := coord{e.row, e.col}
		if done[c] {
			continue
		}
		done[c] = true

		coeff := folded.At(e.row, e.col)
		if math.Abs(coeff) < 1e-300 {
			continue
		}

		if len(lines[e.row]) > 1 {
			lines[e.row] = append(lines[e.row], "+")
		}
		lines[e.row] = append(lines[e.row],
			fmt.Sprintf("%v * %s", coeff, s.varNames[e.col]))
	}

	for row, constant := range s.consts {
		lines[row] = append(lines[row], fmt.Sprintf("= %v", constant))
	}

	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(strings.Join(line, " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
