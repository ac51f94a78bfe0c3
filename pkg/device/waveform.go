package device

import (
	"fmt"
	"math"
	"math/cmplx"
)

type SourceType int

const (
	DC SourceType = iota
	SIN
	PULSE
	PWL
)

func (t SourceType) String() string {
	switch t {
	case DC:
		return "dc"
	case SIN:
		return "sin"
	case PULSE:
		return "pulse"
	case PWL:
		return "pwl"
	default:
		return "unknown"
	}
}

// Waveform describes an independent source value in each analysis mode.
// Phases are in degrees.
type Waveform struct {
	Type SourceType
	// DC value, SIN offset
	Offset float64
	// SIN
	Amplitude float64
	Freq      float64
	Phase     float64
	// PULSE
	V1     float64
	V2     float64
	Delay  float64
	Rise   float64
	Fall   float64
	PWidth float64
	Period float64
	// PWL
	Times  []float64
	Values []float64
	// AC small-signal
	ACMag   float64
	ACPhase float64
}

// checkPWL requires at least one point, one value per time and strictly
// increasing times.
func checkPWL(times, values []float64) error {
	if len(times) == 0 || len(times) != len(values) {
		return fmt.Errorf("pwl with %d times and %d values: %w", len(times), len(values), ErrWaveform)
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return fmt.Errorf("pwl time %g after %g: %w", times[i], times[i-1], ErrWaveform)
		}
	}
	return nil
}

// DCValue is the value used for the operating point. A SIN source
// contributes only its offset.
func (w *Waveform) DCValue() float64 {
	switch w.Type {
	case PULSE, PWL:
		return w.At(0)
	default:
		return w.Offset
	}
}

// Phasor is the AC value. Sources without an AC specification stamp 0.
func (w *Waveform) Phasor() complex128 {
	if w.ACMag == 0 {
		return 0
	}
	return cmplx.Rect(w.ACMag, w.ACPhase*math.Pi/180.0)
}

// At is the instantaneous value at time t.
func (w *Waveform) At(t float64) float64 {
	switch w.Type {
	case DC:
		return w.Offset
	case SIN:
		phaseRad := w.Phase * math.Pi / 180.0
		return w.Offset + w.Amplitude*math.Sin(2.0*math.Pi*w.Freq*t+phaseRad)
	case PULSE:
		return w.pulse(t)
	case PWL:
		return w.pwl(t)
	default:
		return 0
	}
}

func (w *Waveform) pulse(t float64) float64 {
	if t < w.Delay {
		return w.V1
	}

	t = t - w.Delay
	if w.Period > 0 {
		t = math.Mod(t, w.Period)
	}

	if t < w.Rise {
		return w.V1 + (w.V2-w.V1)*t/w.Rise
	}

	if t < w.Rise+w.PWidth {
		return w.V2
	}

	fallStart := w.Rise + w.PWidth
	if t < fallStart+w.Fall {
		return w.V2 - (w.V2-w.V1)*(t-fallStart)/w.Fall
	}

	return w.V1
}

func (w *Waveform) pwl(t float64) float64 {
	if len(w.Times) == 0 || len(w.Times) != len(w.Values) {
		return 0
	}
	if t <= w.Times[0] {
		return w.Values[0]
	}

	lastIdx := len(w.Times) - 1
	if t >= w.Times[lastIdx] {
		return w.Values[lastIdx]
	}

	for i := 1; i < len(w.Times); i++ {
		if t <= w.Times[i] {
			t1, t2 := w.Times[i-1], w.Times[i]
			v1, v2 := w.Values[i-1], w.Values[i]
			return v1 + (v2-v1)*(t-t1)/(t2-t1)
		}
	}

	return w.Values[lastIdx]
}
