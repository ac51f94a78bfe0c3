package device

import (
	"github.com/edp1096/mna-spice/pkg/matrix"
)

// ModeMask selects the analysis modes in which a dependent source couples
// to its controlling quantity. Outside those modes it behaves as a 0 V
// source.
type ModeMask uint8

const (
	InDC ModeMask = 1 << iota
	InAC
	InTransient

	InAllModes = InDC | InAC | InTransient
)

func (mm ModeMask) Has(mode AnalysisMode) bool {
	switch mode {
	case OperatingPointAnalysis:
		return mm&InDC != 0
	case ACAnalysis:
		return mm&InAC != 0
	case TransientAnalysis:
		return mm&InTransient != 0
	default:
		return false
	}
}

// Dependency is the controlled-source capability attached to a branch
// source.
type Dependency struct {
	Gain   float64
	Active ModeMask
}

func (d *Dependency) GetGain() float64 { return d.Gain }

func (d *Dependency) coupled(mode AnalysisMode) bool { return d.Active.Has(mode) }

// VCVS forces v(pos) - v(neg) = gain * (v(ctrl+) - v(ctrl-)).
type VCVS struct {
	BaseDevice
	branchSource
	Dependency
}

var _ BranchDevice = (*VCVS)(nil)

func NewVCVS(name string, gain float64, active ModeMask) *VCVS {
	return &VCVS{
		BaseDevice:   NewBaseDevice(name, gain, Positive, Negative, ControlPositive, ControlNegative),
		branchSource: newBranchSource(),
		Dependency:   Dependency{Gain: gain, Active: active},
	}
}

// NewDCVCVS couples in DC and transient analysis and is a plain 0 V source
// in AC.
func NewDCVCVS(name string, gain float64) *VCVS {
	return NewVCVS(name, gain, InDC|InTransient)
}

// NewACVCVS couples only in AC analysis.
func NewACVCVS(name string, gain float64) *VCVS {
	return NewVCVS(name, gain, InAC)
}

func (e *VCVS) GetType() Denomination { return DenomVCVS }

// ConductivePaths leaves the control terminals floating: they only sense.
func (e *VCVS) ConductivePaths() [][]Role { return [][]Role{{Positive, Negative}} }

func (e *VCVS) stamp(m matrix.DeviceMatrix, status *CircuitStatus) {
	k := status.Branch
	stampIncidence(m, e.Node(Positive), e.Node(Negative), k)
	if e.coupled(status.Mode) {
		m.AddC(k, e.Node(ControlPositive), complex(-e.Gain, 0))
		m.AddC(k, e.Node(ControlNegative), complex(e.Gain, 0))
	}
}

func (e *VCVS) StampDC(m matrix.DeviceMatrix, status *CircuitStatus)        { e.stamp(m, status) }
func (e *VCVS) StampAC(m matrix.DeviceMatrix, status *CircuitStatus)        { e.stamp(m, status) }
func (e *VCVS) StampTransient(m matrix.DeviceMatrix, status *CircuitStatus) { e.stamp(m, status) }

func (e *VCVS) Current(sol Solution) (complex128, error) {
	return sol.BranchCurrent(e.branchIdx), nil
}

// CCVS forces v(pos) - v(neg) = gain * i(control), where the controlling
// current is the branch unknown of another branch device.
type CCVS struct {
	BaseDevice
	branchSource
	Dependency
	control BranchDevice
}

var _ BranchDevice = (*CCVS)(nil)

func NewCCVS(name string, gain float64, control BranchDevice, active ModeMask) *CCVS {
	return &CCVS{
		BaseDevice:   NewBaseDevice(name, gain, Positive, Negative),
		branchSource: newBranchSource(),
		Dependency:   Dependency{Gain: gain, Active: active},
		control:      control,
	}
}

func (h *CCVS) GetType() Denomination { return DenomCCVS }

func (h *CCVS) Control() BranchDevice { return h.control }

func (h *CCVS) stamp(m matrix.DeviceMatrix, status *CircuitStatus) {
	k := status.Branch
	stampIncidence(m, h.Node(Positive), h.Node(Negative), k)
	if h.control == nil || !h.coupled(status.Mode) {
		return
	}
	if ctrl := h.control.Branch(); ctrl >= 0 {
		m.AddD(k, ctrl, complex(-h.Gain, 0))
	}
}

func (h *CCVS) StampDC(m matrix.DeviceMatrix, status *CircuitStatus)        { h.stamp(m, status) }
func (h *CCVS) StampAC(m matrix.DeviceMatrix, status *CircuitStatus)        { h.stamp(m, status) }
func (h *CCVS) StampTransient(m matrix.DeviceMatrix, status *CircuitStatus) { h.stamp(m, status) }

func (h *CCVS) Current(sol Solution) (complex128, error) {
	return sol.BranchCurrent(h.branchIdx), nil
}
