package result

import (
	"fmt"

	"github.com/edp1096/mna-spice/pkg/device"
)

// Transient is the append-only sequence of per-step solutions.
type Transient struct {
	Times []float64
	X     [][]float64
	Nodes int
}

func NewTransient(nodes int) *Transient {
	return &Transient{Nodes: nodes}
}

func (r *Transient) Kind() device.AnalysisMode { return device.TransientAnalysis }

// Append stores the solution of the step that starts at time t.
func (r *Transient) Append(t float64, x []complex128) {
	r.Times = append(r.Times, t)
	r.X = append(r.X, toReal(x))
}

func (r *Transient) Len() int { return len(r.X) }

func (r *Transient) Step(j int) ([]float64, error) {
	if j < 0 || j >= len(r.X) {
		return nil, fmt.Errorf("step %d of %d: %w", j, len(r.X), ErrStep)
	}
	return r.X[j], nil
}

func (r *Transient) solution(j int) (device.Solution, error) {
	x, err := r.Step(j)
	if err != nil {
		return device.Solution{}, err
	}
	return device.Solution{X: toComplex(x), Nodes: r.Nodes}, nil
}

func (r *Transient) ElementVoltage(j int, d device.Device, a, b device.Role) (float64, error) {
	x, err := r.Step(j)
	if err != nil {
		return 0, err
	}
	v, err := terminalVoltage(toComplex(x), d, a, b)
	return real(v), err
}

func (r *Transient) ElementCurrent(j int, d device.Device) (float64, error) {
	sol, err := r.solution(j)
	if err != nil {
		return 0, err
	}
	i, err := d.Current(sol)
	return real(i), err
}

// NodeVoltages returns the waveform of one node across all steps.
func (r *Transient) NodeVoltages(node int) []float64 {
	out := make([]float64, len(r.X))
	for j, x := range r.X {
		if node > 0 && node < len(x) {
			out[j] = x[node]
		}
	}
	return out
}

// Match requires the same number of steps and every step to match.
func (r *Transient) Match(other Result, tol float64) bool {
	o, ok := other.(*Transient)
	if !ok || len(o.X) != len(r.X) {
		return false
	}
	for j := range r.X {
		if !matchVector(r.X[j], o.X[j], tol) {
			return false
		}
	}
	return true
}

// MatchStep compares step j against the first step of a single-step
// reference.
func (r *Transient) MatchStep(j int, ref *Transient, tol float64) bool {
	x, err := r.Step(j)
	if err != nil {
		return false
	}
	want, err := ref.Step(0)
	if err != nil {
		return false
	}
	return matchVector(x, want, tol)
}

func matchVector(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Within(a[i], b[i], tol) {
			return false
		}
	}
	return true
}
