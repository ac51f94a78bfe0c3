package matrix

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Solver solves a*x = z for one right-hand side.
type Solver interface {
	Solve(a *mat.CDense, z []complex128) ([]complex128, error)
}

const (
	BackendSparse = "sparse"
	BackendDense  = "dense"
)

// NewSolver returns the backend registered under name. An empty name selects
// the sparse backend.
func NewSolver(name string) (Solver, error) {
	switch name {
	case "", BackendSparse:
		return NewSparseSolver(), nil
	case BackendDense:
		return NewDenseSolver(), nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownSolver)
	}
}

func checkDims(a *mat.CDense, z []complex128) (int, error) {
	r, c := a.Dims()
	if r != c {
		return 0, fmt.Errorf("matrix is %dx%d: %w", r, c, ErrDimension)
	}
	if len(z) != r {
		return 0, fmt.Errorf("rhs has %d entries, matrix has %d rows: %w", len(z), r, ErrDimension)
	}
	return r, nil
}

// checkFinite guards against a factorization that succeeded numerically but
// produced garbage.
func checkFinite(x []complex128) error {
	for i, v := range x {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return fmt.Errorf("non-finite solution at x%d: %w", i+1, ErrSingular)
		}
	}
	return nil
}
