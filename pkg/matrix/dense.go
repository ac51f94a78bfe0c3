package matrix

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// DefaultPivotTolerance is the smallest pivot accepted by DenseSolver,
// relative to the largest entry of the matrix.
const DefaultPivotTolerance = 1e-14

// DenseSolver runs Gaussian elimination with partial pivoting on a copy of
// the matrix. gonum has no complex LU, so the elimination is done in place
// on a CDense.
type DenseSolver struct {
	PivotTolerance float64
}

func NewDenseSolver() *DenseSolver {
	return &DenseSolver{PivotTolerance: DefaultPivotTolerance}
}

func (s *DenseSolver) Solve(a *mat.CDense, z []complex128) ([]complex128, error) {
	size, err := checkDims(a, z)
	if err != nil {
		return nil, err
	}

	lu := mat.NewCDense(size, size, nil)
	lu.Copy(a)
	x := make([]complex128, size)
	copy(x, z)

	scale := 0.0
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			scale = max(scale, cmplx.Abs(lu.At(i, j)))
		}
	}
	threshold := s.PivotTolerance * scale

	for col := 0; col < size; col++ {
		pivot, best := col, cmplx.Abs(lu.At(col, col))
		for row := col + 1; row < size; row++ {
			if v := cmplx.Abs(lu.At(row, col)); v > best {
				pivot, best = row, v
			}
		}
		if best == 0 || best <= threshold {
			return nil, fmt.Errorf("zero pivot in column %d: %w", col+1, ErrSingular)
		}

		if pivot != col {
			for j := col; j < size; j++ {
				p, c := lu.At(pivot, j), lu.At(col, j)
				lu.Set(pivot, j, c)
				lu.Set(col, j, p)
			}
			x[pivot], x[col] = x[col], x[pivot]
		}

		d := lu.At(col, col)
		for row := col + 1; row < size; row++ {
			f := lu.At(row, col) / d
			if f == 0 {
				continue
			}
			lu.Set(row, col, 0)
			for j := col + 1; j < size; j++ {
				lu.Set(row, j, lu.At(row, j)-f*lu.At(col, j))
			}
			x[row] -= f * x[col]
		}
	}

	// back substitution
	for row := size - 1; row >= 0; row-- {
		sum := x[row]
		for j := row + 1; j < size; j++ {
			sum -= lu.At(row, j) * x[j]
		}
		x[row] = sum / lu.At(row, row)
	}

	if err := checkFinite(x); err != nil {
		return nil, err
	}

	return x, nil
}
