package result

import (
	"github.com/edp1096/mna-spice/pkg/device"
)

// DC holds one operating point. X has node voltages with ground at 0,
// followed by branch currents.
type DC struct {
	X     []float64
	Nodes int
}

func NewDC(x []complex128, nodes int) *DC {
	return &DC{X: toReal(x), Nodes: nodes}
}

func (r *DC) Kind() device.AnalysisMode { return device.OperatingPointAnalysis }

func (r *DC) solution() device.Solution {
	return device.Solution{X: toComplex(r.X), Nodes: r.Nodes}
}

func (r *DC) NodeVoltage(node int) float64 {
	return real(r.solution().Voltage(node))
}

func (r *DC) BranchCurrent(k int) float64 {
	return real(r.solution().BranchCurrent(k))
}

// ElementVoltage is v(a) - v(b) across the element's terminals.
func (r *DC) ElementVoltage(d device.Device, a, b device.Role) (float64, error) {
	v, err := terminalVoltage(toComplex(r.X), d, a, b)
	return real(v), err
}

func (r *DC) ElementCurrent(d device.Device) (float64, error) {
	i, err := d.Current(r.solution())
	return real(i), err
}

// Match compares entry by entry. Results of other analyses never match.
func (r *DC) Match(other Result, tol float64) bool {
	o, ok := other.(*DC)
	if !ok || len(o.X) != len(r.X) {
		return false
	}
	for i := range r.X {
		if !Within(r.X[i], o.X[i], tol) {
			return false
		}
	}
	return true
}
