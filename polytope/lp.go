package polytope

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const lpTol = 1e-10

// Errors surfaced by the LP support oracle.
var (
	ErrLPInfeasible = errors.New("linear program is infeasible")
	ErrLPUnbounded  = errors.New("linear program is unbounded")
)

// SolveLP minimizes c'*x subject to G*x <= h and A*x = b over free variables x,
// using the simplex method. Either constraint system may be nil.
//
// Variables with an all-zero constraint column are eliminated before the solve:
// the simplex implementation rejects zero columns outright, but such a variable
// just means the program is unbounded when its objective coefficient is nonzero
// and the variable is irrelevant (fixed to zero in the solution) otherwise.
// Feasibility of the remaining system is still decided first, so an empty
// region reports ErrLPInfeasible even when unconstrained variables exist.
func SolveLP(c []float64, g mat.Matrix, h []float64, a mat.Matrix, b []float64) ([]float64, error) {
	n := len(c)
	kept := constrainedColumns(n, g, a)
	if len(kept) == n {
		return solveSimplex(c, g, h, a, b)
	}

	// No variable is touched by any constraint: feasibility reduces to the
	// constant rows 0 <= h and 0 = b.
	if len(kept) == 0 {
		for _, hi := range h {
			if hi < -lpTol {
				return nil, ErrLPInfeasible
			}
		}
		for _, bi := range b {
			if bi < -lpTol || bi > lpTol {
				return nil, ErrLPInfeasible
			}
		}
		for _, ci := range c {
			if ci != 0 {
				return nil, ErrLPUnbounded
			}
		}
		return make([]float64, n), nil
	}

	cRed := make([]float64, len(kept))
	for i, j := range kept {
		cRed[i] = c[j]
	}
	xRed, err := solveSimplex(cRed, keepColumns(g, kept), h, keepColumns(a, kept), b)
	if err != nil {
		return nil, err
	}
	// The reduced program is feasible; a nonzero objective weight on any
	// eliminated variable now certifies unboundedness.
	for j, used := 0, 0; j < n; j++ {
		if used < len(kept) && kept[used] == j {
			used++
			continue
		}
		if c[j] != 0 {
			return nil, ErrLPUnbounded
		}
	}
	x := make([]float64, n)
	for i, j := range kept {
		x[j] = xRed[i]
	}
	return x, nil
}

func solveSimplex(c []float64, g mat.Matrix, h []float64, a mat.Matrix, b []float64) ([]float64, error) {
	cStd, aStd, bStd := lp.Convert(c, g, h, a, b)
	_, xStd, err := lp.Simplex(cStd, aStd, bStd, lpTol, nil)
	if err != nil {
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return nil, ErrLPInfeasible
		case errors.Is(err, lp.ErrUnbounded):
			return nil, ErrLPUnbounded
		default:
			return nil, errors.Wrap(err, "simplex solve failed")
		}
	}
	// Convert splits each free variable into a positive and a negative part:
	// x = xStd[:n] - xStd[n:2n], slack variables follow.
	n := len(c)
	x := make([]float64, n)
	for i := range x {
		x[i] = xStd[i] - xStd[n+i]
	}
	return x, nil
}

// constrainedColumns returns the sorted indices of variables with a nonzero
// coefficient in at least one constraint row.
func constrainedColumns(n int, g, a mat.Matrix) []int {
	used := make([]bool, n)
	mark := func(m mat.Matrix) {
		if m == nil {
			return
		}
		rows, cols := m.Dims()
		for j := 0; j < cols; j++ {
			for i := 0; i < rows; i++ {
				if m.At(i, j) != 0 {
					used[j] = true
					break
				}
			}
		}
	}
	mark(g)
	mark(a)
	kept := make([]int, 0, n)
	for j := 0; j < n; j++ {
		if used[j] {
			kept = append(kept, j)
		}
	}
	return kept
}

// keepColumns returns a copy of m restricted to the given columns, or nil for a
// nil matrix.
func keepColumns(m mat.Matrix, cols []int) mat.Matrix {
	if m == nil {
		return nil
	}
	rows, _ := m.Dims()
	out := mat.NewDense(rows, len(cols), nil)
	for i := 0; i < rows; i++ {
		for k, j := range cols {
			out.Set(i, k, m.At(i, j))
		}
	}
	return out
}
