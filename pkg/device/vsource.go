package device

import (
	"fmt"

	"github.com/edp1096/mna-spice/pkg/matrix"
)

// branchSource is the voltage-source capability shared by independent and
// dependent sources: two terminals tied to one branch-current unknown.
type branchSource struct {
	branchIdx int
}

// unnumbered is the branch of a source no circuit has numbered yet.
const unnumbered = -1

func newBranchSource() branchSource { return branchSource{branchIdx: unnumbered} }

// Branch returns the branch-current unknown, or -1 before the owning circuit
// numbered it.
func (b *branchSource) Branch() int { return b.branchIdx }

func (b *branchSource) SetBranch(k int) { b.branchIdx = k }

// stampIncidence writes v(pos) - v(neg) into branch row k and lets the
// branch current leave pos and enter neg.
func stampIncidence(m matrix.DeviceMatrix, pos, neg, k int) {
	m.AddB(pos, k, 1)
	m.AddB(neg, k, -1)
	m.AddC(k, pos, 1)
	m.AddC(k, neg, -1)
}

type VoltageSource struct {
	BaseDevice
	branchSource
	wave Waveform
}

var _ BranchDevice = (*VoltageSource)(nil)

func newVoltageSource(name string, wave Waveform) *VoltageSource {
	return &VoltageSource{
		BaseDevice:   NewBaseDevice(name, wave.DCValue(), Positive, Negative),
		branchSource: newBranchSource(),
		wave:         wave,
	}
}

func NewDCVoltageSource(name string, value float64) *VoltageSource {
	return newVoltageSource(name, Waveform{Type: DC, Offset: value})
}

// NewACVoltageSource returns a source driving acMag at acPhase degrees in AC
// analysis and dcValue otherwise.
func NewACVoltageSource(name string, dcValue, acMag, acPhase float64) *VoltageSource {
	return newVoltageSource(name, Waveform{Type: DC, Offset: dcValue, ACMag: acMag, ACPhase: acPhase})
}

func NewSinVoltageSource(name string, offset, amplitude, freq, phase float64) *VoltageSource {
	return newVoltageSource(name, Waveform{Type: SIN, Offset: offset, Amplitude: amplitude, Freq: freq, Phase: phase})
}

func NewPulseVoltageSource(name string, v1, v2, delay, rise, fall, pWidth, period float64) *VoltageSource {
	return newVoltageSource(name, Waveform{
		Type:   PULSE,
		V1:     v1,
		V2:     v2,
		Delay:  delay,
		Rise:   rise,
		Fall:   fall,
		PWidth: pWidth,
		Period: period,
	})
}

// NewPWLVoltageSource fails unless times and values pair up with times
// strictly increasing.
func NewPWLVoltageSource(name string, times, values []float64) (*VoltageSource, error) {
	if err := checkPWL(times, values); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return newVoltageSource(name, Waveform{Type: PWL, Times: times, Values: values}), nil
}

func (v *VoltageSource) GetType() Denomination { return DenomVoltage }

func (v *VoltageSource) Waveform() Waveform { return v.wave }

// SetValue changes the DC level. The DC sweep drives sources through it.
func (v *VoltageSource) SetValue(value float64) {
	v.Value = value
	v.wave.Offset = value
}

func (v *VoltageSource) stamp(m matrix.DeviceMatrix, status *CircuitStatus, value complex128) {
	stampIncidence(m, v.Node(Positive), v.Node(Negative), status.Branch)
	m.AddBranchRHS(status.Branch, value)
}

func (v *VoltageSource) StampDC(m matrix.DeviceMatrix, status *CircuitStatus) {
	v.stamp(m, status, complex(v.wave.DCValue(), 0))
}

func (v *VoltageSource) StampAC(m matrix.DeviceMatrix, status *CircuitStatus) {
	v.stamp(m, status, v.wave.Phasor())
}

func (v *VoltageSource) StampTransient(m matrix.DeviceMatrix, status *CircuitStatus) {
	v.stamp(m, status, complex(v.wave.At(status.Time), 0))
}

// Current is the branch unknown: positive when current enters the positive
// terminal from the external circuit.
func (v *VoltageSource) Current(sol Solution) (complex128, error) {
	return sol.BranchCurrent(v.branchIdx), nil
}
