package device

import (
	"math"

	"github.com/edp1096/mna-spice/internal/consts"
	"github.com/edp1096/mna-spice/pkg/matrix"
	"github.com/edp1096/mna-spice/pkg/util"
)

type Capacitor struct {
	BaseDevice
}

var _ Device = (*Capacitor)(nil)

func NewCapacitor(name string, value float64) *Capacitor {
	return &Capacitor{BaseDevice: NewBaseDevice(name, value, Positive, Negative)}
}

func (c *Capacitor) GetType() Denomination { return DenomCapacitor }

// StampDC stamps a leakage admittance so a node reached only through
// capacitors still has a DC path.
func (c *Capacitor) StampDC(m matrix.DeviceMatrix, _ *CircuitStatus) {
	stampAdmittance(m, c.Node(Positive), c.Node(Negative), complex(consts.CapacitorLeakage, 0))
}

func (c *Capacitor) StampAC(m matrix.DeviceMatrix, status *CircuitStatus) {
	omega := 2 * math.Pi * status.Frequency
	stampAdmittance(m, c.Node(Positive), c.Node(Negative), complex(0, -omega*c.Value))
}

// StampTransient uses the backward-difference companion: conductance C/dt in
// parallel with a source carrying C*v(t-dt)/dt.
func (c *Capacitor) StampTransient(m matrix.DeviceMatrix, status *CircuitStatus) {
	n1, n2 := c.Node(Positive), c.Node(Negative)

	geq := c.Value * util.GetBDFcoeffs(1, status.TimeStep)[0]
	vPrev := real(c.voltageAcross(status.Solution, Positive, Negative))

	stampAdmittance(m, n1, n2, complex(geq, 0))
	stampCurrent(m, n1, n2, complex(geq*vPrev, 0))
}
