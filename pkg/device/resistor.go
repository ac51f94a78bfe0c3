package device

import (
	"github.com/edp1096/mna-spice/pkg/matrix"
)

type Resistor struct {
	BaseDevice
}

var _ Device = (*Resistor)(nil)

func NewResistor(name string, value float64) *Resistor {
	return &Resistor{BaseDevice: NewBaseDevice(name, value, Positive, Negative)}
}

func (r *Resistor) GetType() Denomination { return DenomResistor }

// Resistors are linear and memoryless, so every mode stamps the same 1/R.
func (r *Resistor) stamp(m matrix.DeviceMatrix) {
	g := 1.0 / r.Value
	stampAdmittance(m, r.Node(Positive), r.Node(Negative), complex(g, 0))
}

func (r *Resistor) StampDC(m matrix.DeviceMatrix, _ *CircuitStatus)        { r.stamp(m) }
func (r *Resistor) StampAC(m matrix.DeviceMatrix, _ *CircuitStatus)        { r.stamp(m) }
func (r *Resistor) StampTransient(m matrix.DeviceMatrix, _ *CircuitStatus) { r.stamp(m) }

// Current is the current flowing from the positive to the negative terminal.
func (r *Resistor) Current(sol Solution) (complex128, error) {
	return r.voltageAcross(sol, Positive, Negative) / complex(r.Value, 0), nil
}
