package device

import (
	"github.com/edp1096/mna-spice/pkg/matrix"
)

// OpAmp is a finite-gain amplifier: the output is driven against ground to
// gain * (v(noninv) - v(inv)).
type OpAmp struct {
	BaseDevice
	branchSource
	Dependency
}

var _ BranchDevice = (*OpAmp)(nil)

func NewOpAmp(name string, gain float64) *OpAmp {
	return &OpAmp{
		BaseDevice:   NewBaseDevice(name, gain, NonInverting, Inverting, Output),
		branchSource: newBranchSource(),
		Dependency:   Dependency{Gain: gain, Active: InAllModes},
	}
}

func (u *OpAmp) GetType() Denomination { return DenomOpAmp }

// ConductivePaths ties only the output to ground; the inputs draw no current.
func (u *OpAmp) ConductivePaths() [][]Role { return [][]Role{{Output, Reference}} }

func (u *OpAmp) stamp(m matrix.DeviceMatrix, status *CircuitStatus) {
	k := status.Branch
	stampIncidence(m, u.Node(Output), 0, k)
	if u.coupled(status.Mode) {
		m.AddC(k, u.Node(NonInverting), complex(-u.Gain, 0))
		m.AddC(k, u.Node(Inverting), complex(u.Gain, 0))
	}
}

func (u *OpAmp) StampDC(m matrix.DeviceMatrix, status *CircuitStatus)        { u.stamp(m, status) }
func (u *OpAmp) StampAC(m matrix.DeviceMatrix, status *CircuitStatus)        { u.stamp(m, status) }
func (u *OpAmp) StampTransient(m matrix.DeviceMatrix, status *CircuitStatus) { u.stamp(m, status) }

// Current is the output branch current.
func (u *OpAmp) Current(sol Solution) (complex128, error) {
	return sol.BranchCurrent(u.branchIdx), nil
}
