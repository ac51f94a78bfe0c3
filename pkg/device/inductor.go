package device

import (
	"math"

	"github.com/edp1096/mna-spice/internal/consts"
	"github.com/edp1096/mna-spice/pkg/matrix"
	"github.com/edp1096/mna-spice/pkg/util"
)

type Inductor struct {
	BaseDevice
}

var _ Device = (*Inductor)(nil)

func NewInductor(name string, value float64) *Inductor {
	return &Inductor{BaseDevice: NewBaseDevice(name, value, Positive, Negative)}
}

func (l *Inductor) GetType() Denomination { return DenomInductor }

// StampDC approximates the DC short with a large finite conductance.
func (l *Inductor) StampDC(m matrix.DeviceMatrix, _ *CircuitStatus) {
	stampAdmittance(m, l.Node(Positive), l.Node(Negative), complex(consts.InductorShort, 0))
}

// StampAC stamps 1/(jwL) in the same phasor convention as the capacitor's
// -jwC, so the admittance lands as +j/(wL).
func (l *Inductor) StampAC(m matrix.DeviceMatrix, status *CircuitStatus) {
	omega := 2 * math.Pi * status.Frequency
	stampAdmittance(m, l.Node(Positive), l.Node(Negative), complex(0, 1/(omega*l.Value)))
}

// StampTransient is the dual of the capacitor companion: conductance dt/L
// and a source of -v(t-dt)*dt/L.
func (l *Inductor) StampTransient(m matrix.DeviceMatrix, status *CircuitStatus) {
	n1, n2 := l.Node(Positive), l.Node(Negative)

	geq := 1 / (l.Value * util.GetBDFcoeffs(1, status.TimeStep)[0])
	vPrev := real(l.voltageAcross(status.Solution, Positive, Negative))

	stampAdmittance(m, n1, n2, complex(geq, 0))
	stampCurrent(m, n1, n2, complex(-vPrev*geq, 0))
}
