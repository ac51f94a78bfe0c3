package device

import (
	"math"

	"github.com/edp1096/mna-spice/internal/consts"
	"github.com/edp1096/mna-spice/pkg/matrix"
)

type Diode struct {
	BaseDevice
	// Model parameters
	Is float64 // Saturation current
	N  float64 // Emission coefficient
	Vt float64 // Thermal voltage
}

var (
	_ Device    = (*Diode)(nil)
	_ NonLinear = (*Diode)(nil)
)

func NewDiode(name string, is, n, vt float64) *Diode {
	return &Diode{
		BaseDevice: NewBaseDevice(name, is, Anode, Cathode),
		Is:         is,
		N:          n,
		Vt:         vt,
	}
}

// NewDefaultDiode uses the SPICE default saturation current at 27 C.
func NewDefaultDiode(name string) *Diode {
	return NewDiode(name, 1e-14, 1.0, ThermalVoltage(27))
}

// ThermalVoltage returns kT/q at the given temperature in Celsius.
func ThermalVoltage(tempC float64) float64 {
	return consts.BOLTZMANN * (tempC + consts.KELVIN) / consts.CHARGE
}

func (d *Diode) GetType() Denomination { return DenomDiode }

func (d *Diode) NonLinear() bool { return true }

func (d *Diode) SetModelParameters(params map[string]float64) {
	if is, ok := params["is"]; ok {
		d.Is = is
		d.Value = is
	}
	if n, ok := params["n"]; ok {
		d.N = n
	}
	if temp, ok := params["temp"]; ok {
		d.Vt = ThermalVoltage(temp)
	}
	if vt, ok := params["vt"]; ok {
		d.Vt = vt
	}
}

// calculateCurrent evaluates the Shockley law with vd clamped to the
// forward ceiling.
func (d *Diode) calculateCurrent(vd float64) float64 {
	vd = math.Min(vd, consts.DiodeVdMax)
	return d.Is * (math.Exp(vd/(d.N*d.Vt)) - 1)
}

// calculateConductance is the derivative of calculateCurrent at vd.
func (d *Diode) calculateConductance(vd float64) float64 {
	vd = math.Min(vd, consts.DiodeVdMax)
	return d.Is * math.Exp(vd/(d.N*d.Vt)) / (d.N * d.Vt)
}

// Linearize returns the tangent of the diode law at the operating point in
// sol: conductance g and intercept current i0, so id ~ g*vd + i0.
func (d *Diode) Linearize(sol Solution) (g, i0 float64) {
	vd := math.Min(real(d.voltageAcross(sol, Anode, Cathode)), consts.DiodeVdMax)
	id := d.calculateCurrent(vd)
	g = d.calculateConductance(vd)
	return g, id - vd*g
}

func (d *Diode) stamp(m matrix.DeviceMatrix, status *CircuitStatus) {
	anode, cathode := d.Node(Anode), d.Node(Cathode)
	g, i0 := d.Linearize(status.Solution)

	stampAdmittance(m, anode, cathode, complex(g, 0))
	stampCurrent(m, cathode, anode, complex(i0, 0))
}

func (d *Diode) StampDC(m matrix.DeviceMatrix, status *CircuitStatus) { d.stamp(m, status) }

// StampAC stamps the small-signal conductance at the operating point in
// status. The intercept current is a DC quantity and is left out.
func (d *Diode) StampAC(m matrix.DeviceMatrix, status *CircuitStatus) {
	g, _ := d.Linearize(status.Solution)
	stampAdmittance(m, d.Node(Anode), d.Node(Cathode), complex(g, 0))
}

// StampTransient linearizes once per step around the previous step.
func (d *Diode) StampTransient(m matrix.DeviceMatrix, status *CircuitStatus) { d.stamp(m, status) }

// Current is the diode current at the solution, anode to cathode.
func (d *Diode) Current(sol Solution) (complex128, error) {
	vd := real(d.voltageAcross(sol, Anode, Cathode))
	return complex(d.calculateCurrent(vd), 0), nil
}
