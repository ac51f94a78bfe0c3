package result

import (
	"github.com/edp1096/mna-spice/pkg/device"
)

// AC holds the phasor solution at one frequency.
type AC struct {
	Frequency float64
	X         []complex128
	Nodes     int
}

func NewAC(freq float64, x []complex128, nodes int) *AC {
	stored := make([]complex128, len(x))
	copy(stored, x)
	return &AC{Frequency: freq, X: stored, Nodes: nodes}
}

func (r *AC) Kind() device.AnalysisMode { return device.ACAnalysis }

func (r *AC) solution() device.Solution {
	return device.Solution{X: r.X, Nodes: r.Nodes}
}

func (r *AC) NodeVoltage(node int) complex128 {
	return r.solution().Voltage(node)
}

func (r *AC) BranchCurrent(k int) complex128 {
	return r.solution().BranchCurrent(k)
}

func (r *AC) ElementVoltage(d device.Device, a, b device.Role) (complex128, error) {
	return terminalVoltage(r.X, d, a, b)
}

func (r *AC) ElementCurrent(d device.Device) (complex128, error) {
	return d.Current(r.solution())
}

// Match compares real and imaginary parts entry by entry.
func (r *AC) Match(other Result, tol float64) bool {
	o, ok := other.(*AC)
	if !ok || len(o.X) != len(r.X) {
		return false
	}
	for i := range r.X {
		if !WithinComplex(r.X[i], o.X[i], tol) {
			return false
		}
	}
	return true
}
