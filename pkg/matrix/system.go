package matrix

import (
	"fmt"
	"io"
	"log"

	"gonum.org/v1/gonum/mat"
)

// System holds the MNA blocks of one solve. n counts every node including
// ground, m counts branch unknowns. B, C and D are nil when m is 0.
type System struct {
	n, m int

	logger *log.Logger
	err    error // first rejected stamp since Reset

	G *mat.CDense // n x n
	B *mat.CDense // n x m
	C *mat.CDense // m x n
	D *mat.CDense // m x m
	Z *mat.CDense // (n+m) x 1
}

var _ DeviceMatrix = (*System)(nil)

func NewSystem(n, m int) *System {
	if n < 1 {
		n = 1
	}
	s := &System{
		n:      n,
		m:      m,
		logger: log.New(io.Discard, "", 0),
		G:      mat.NewCDense(n, n, nil),
		Z:      mat.NewCDense(n+m, 1, nil),
	}
	if m > 0 {
		s.B = mat.NewCDense(n, m, nil)
		s.C = mat.NewCDense(m, n, nil)
		s.D = mat.NewCDense(m, m, nil)
	}
	return s
}

// SetLogger routes rejected-stamp messages to l. A nil logger silences them.
func (s *System) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	s.logger = l
}

// Err returns the first out-of-range stamp since the last Reset. Such stamps
// leave the system untouched.
func (s *System) Err() error { return s.err }

func (s *System) reject(block string, idx ...int) {
	err := fmt.Errorf("%s%v in %dx%d system: %w", block, idx, s.n, s.m, ErrIndex)
	s.logger.Printf("matrix: %v", err)
	if s.err == nil {
		s.err = err
	}
}

func (s *System) Nodes() int    { return s.n }
func (s *System) Branches() int { return s.m }

// Size is the dimension of the system actually handed to the solver.
func (s *System) Size() int { return s.n - 1 + s.m }

// Reset zeroes every block so the system can be stamped again.
func (s *System) Reset() {
	s.err = nil
	s.G.Zero()
	s.Z.Zero()
	if s.m > 0 {
		s.B.Zero()
		s.C.Zero()
		s.D.Zero()
	}
}

func (s *System) AddG(i, j int, value complex128) {
	if !s.nodeInRange(i) || !s.nodeInRange(j) {
		s.reject("G", i, j)
		return
	}
	s.G.Set(i, j, s.G.At(i, j)+value)
}

func (s *System) AddB(i, k int, value complex128) {
	if !s.nodeInRange(i) || !s.branchInRange(k) {
		s.reject("B", i, k)
		return
	}
	s.B.Set(i, k, s.B.At(i, k)+value)
}

func (s *System) AddC(k, j int, value complex128) {
	if !s.branchInRange(k) || !s.nodeInRange(j) {
		s.reject("C", k, j)
		return
	}
	s.C.Set(k, j, s.C.At(k, j)+value)
}

func (s *System) AddD(k, l int, value complex128) {
	if !s.branchInRange(k) || !s.branchInRange(l) {
		s.reject("D", k, l)
		return
	}
	s.D.Set(k, l, s.D.At(k, l)+value)
}

func (s *System) AddRHS(i int, value complex128) {
	if !s.nodeInRange(i) {
		s.reject("RHS", i)
		return
	}
	s.Z.Set(i, 0, s.Z.At(i, 0)+value)
}

func (s *System) AddBranchRHS(k int, value complex128) {
	if !s.branchInRange(k) {
		s.reject("branch RHS", k)
		return
	}
	s.Z.Set(s.n+k, 0, s.Z.At(s.n+k, 0)+value)
}

func (s *System) nodeInRange(i int) bool   { return i >= 0 && i < s.n }
func (s *System) branchInRange(k int) bool { return k >= 0 && k < s.m }

// Augment concatenates the blocks into [[G, B], [C, D]].
func (s *System) Augment() *mat.CDense {
	size := s.n + s.m
	a := mat.NewCDense(size, size, nil)
	for i := 0; i < s.n; i++ {
		for j := 0; j < s.n; j++ {
			a.Set(i, j, s.G.At(i, j))
		}
	}
	for k := 0; k < s.m; k++ {
		for i := 0; i < s.n; i++ {
			a.Set(i, s.n+k, s.B.At(i, k))
			a.Set(s.n+k, i, s.C.At(k, i))
		}
		for l := 0; l < s.m; l++ {
			a.Set(s.n+k, s.n+l, s.D.At(k, l))
		}
	}
	return a
}

// Reduce returns the augmented matrix and right-hand side with the ground
// row and column removed. It returns a nil matrix for an empty system.
func (s *System) Reduce() (*mat.CDense, []complex128) {
	size := s.Size()
	if size == 0 {
		return nil, nil
	}

	full := s.Augment()
	a := mat.NewCDense(size, size, nil)
	z := make([]complex128, size)
	for i := 1; i < s.n+s.m; i++ {
		for j := 1; j < s.n+s.m; j++ {
			a.Set(i-1, j-1, full.At(i, j))
		}
		z[i-1] = s.Z.At(i, 0)
	}
	return a, z
}

// ReinsertGround restores the ground entry at index 0 of a reduced solution.
func ReinsertGround(x []complex128) []complex128 {
	full := make([]complex128, len(x)+1)
	copy(full[1:], x)
	return full
}

// Solve reduces the system, hands it to solver and returns the full-size
// solution vector with ground at index 0.
func (s *System) Solve(solver Solver) ([]complex128, error) {
	a, z := s.Reduce()
	if a == nil {
		return make([]complex128, s.n+s.m), nil
	}

	x, err := solver.Solve(a, z)
	if err != nil {
		return nil, err
	}
	if len(x) != len(z) {
		return nil, fmt.Errorf("solution has %d entries, want %d: %w", len(x), len(z), ErrDimension)
	}

	return ReinsertGround(x), nil
}

// Print writes the reduced equations in row form, one equation per line.
func (s *System) Print(w io.Writer) {
	a, z := s.Reduce()
	size := s.Size()

	fmt.Fprintf(w, "\nCircuit Equations (%dx%d):\n", size, size)
	fmt.Fprintln(w, "Node equations 1..n-1, followed by branch equations")
	if a == nil {
		return
	}

	for i := 0; i < size; i++ {
		fmt.Fprintf(w, "Equation %d:", i+1)
		for j := 0; j < size; j++ {
			v := a.At(i, j)
			if v == 0 {
				continue
			}
			if imag(v) == 0 {
				fmt.Fprintf(w, "  %+g*x%d", real(v), j+1)
			} else {
				fmt.Fprintf(w, "  (%g%+gj)*x%d", real(v), imag(v), j+1)
			}
		}
		fmt.Fprintf(w, " = %g%+gj\n", real(z[i]), imag(z[i]))
	}
}
