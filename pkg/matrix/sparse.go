package matrix

import (
	"fmt"

	"github.com/edp1096/sparse"
	"gonum.org/v1/gonum/mat"
)

// SparseSolver factors the system with the Sparse 1.3 port. Every analysis
// mode goes through the complex path; DC and transient simply carry zero
// imaginary parts.
type SparseSolver struct {
	config *sparse.Configuration
}

func NewSparseSolver() *SparseSolver {
	return &SparseSolver{
		config: &sparse.Configuration{
			Real:                    true,
			Complex:                 true,
			SeparatedComplexVectors: true,
			Expandable:              true,
			Translate:               false,
			ModifiedNodal:           true,
			TiesMultiplier:          5,
			PrinterWidth:            140,
			Annotate:                0,
		},
	}
}

func (s *SparseSolver) Solve(a *mat.CDense, z []complex128) ([]complex128, error) {
	size, err := checkDims(a, z)
	if err != nil {
		return nil, err
	}

	m, err := sparse.Create(int64(size), s.config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %v", err)
	}
	defer m.Destroy()

	m.Clear()

	// 1-based indexing
	for i := 1; i <= size; i++ {
		for j := 1; j <= size; j++ {
			v := a.At(i-1, j-1)
			if v == 0 && i != j {
				continue
			}
			element := m.GetElement(int64(i), int64(j))
			if element == nil {
				return nil, fmt.Errorf("sparse element (%d,%d) not allocated", i, j)
			}
			element.Real += real(v)
			element.Imag += imag(v)
		}
	}

	rhs := make([]float64, size+1)
	rhsImag := make([]float64, size+1)
	for i, v := range z {
		rhs[i+1] = real(v)
		rhsImag[i+1] = imag(v)
	}

	if err := m.Factor(); err != nil {
		return nil, fmt.Errorf("matrix factorization failed: %v: %w", err, ErrSingular)
	}

	solution, solutionImag, err := m.SolveComplex(rhs, rhsImag)
	if err != nil {
		return nil, fmt.Errorf("matrix solve failed: %v: %w", err, ErrSingular)
	}
	if len(solution) < size+1 || len(solutionImag) < size+1 {
		return nil, fmt.Errorf("sparse solution has %d entries, want %d: %w", len(solution), size+1, ErrDimension)
	}

	x := make([]complex128, size)
	for i := range x {
		x[i] = complex(solution[i+1], solutionImag[i+1])
	}

	if err := checkFinite(x); err != nil {
		return nil, err
	}

	return x, nil
}
