package device

import (
	"fmt"

	"github.com/edp1096/mna-spice/pkg/matrix"
)

// CurrentSource drives its value into the positive node and out of the
// negative node. It owns no branch unknown.
type CurrentSource struct {
	BaseDevice
	wave Waveform
}

var _ Device = (*CurrentSource)(nil)

func newCurrentSource(name string, wave Waveform) *CurrentSource {
	return &CurrentSource{
		BaseDevice: NewBaseDevice(name, wave.DCValue(), Positive, Negative),
		wave:       wave,
	}
}

func NewDCCurrentSource(name string, value float64) *CurrentSource {
	return newCurrentSource(name, Waveform{Type: DC, Offset: value})
}

func NewACCurrentSource(name string, dcValue, acMag, acPhase float64) *CurrentSource {
	return newCurrentSource(name, Waveform{Type: DC, Offset: dcValue, ACMag: acMag, ACPhase: acPhase})
}

func NewSinCurrentSource(name string, offset, amplitude, freq, phase float64) *CurrentSource {
	return newCurrentSource(name, Waveform{Type: SIN, Offset: offset, Amplitude: amplitude, Freq: freq, Phase: phase})
}

func NewPulseCurrentSource(name string, i1, i2, delay, rise, fall, pWidth, period float64) *CurrentSource {
	return newCurrentSource(name, Waveform{
		Type:   PULSE,
		V1:     i1,
		V2:     i2,
		Delay:  delay,
		Rise:   rise,
		Fall:   fall,
		PWidth: pWidth,
		Period: period,
	})
}

func NewPWLCurrentSource(name string, times, values []float64) (*CurrentSource, error) {
	if err := checkPWL(times, values); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return newCurrentSource(name, Waveform{Type: PWL, Times: times, Values: values}), nil
}

func (i *CurrentSource) GetType() Denomination { return DenomCurrent }

func (i *CurrentSource) Waveform() Waveform { return i.wave }

func (i *CurrentSource) SetValue(value float64) {
	i.Value = value
	i.wave.Offset = value
}

func (i *CurrentSource) StampDC(m matrix.DeviceMatrix, _ *CircuitStatus) {
	stampCurrent(m, i.Node(Positive), i.Node(Negative), complex(i.wave.DCValue(), 0))
}

func (i *CurrentSource) StampAC(m matrix.DeviceMatrix, _ *CircuitStatus) {
	stampCurrent(m, i.Node(Positive), i.Node(Negative), i.wave.Phasor())
}

func (i *CurrentSource) StampTransient(m matrix.DeviceMatrix, status *CircuitStatus) {
	stampCurrent(m, i.Node(Positive), i.Node(Negative), complex(i.wave.At(status.Time), 0))
}

// Current is the source's DC value, the current it drives out of the
// positive terminal into the circuit. The solution does not change it.
func (i *CurrentSource) Current(Solution) (complex128, error) {
	return complex(i.wave.DCValue(), 0), nil
}

// ConductivePaths is empty: an ideal current source has infinite impedance.
func (i *CurrentSource) ConductivePaths() [][]Role { return nil }
