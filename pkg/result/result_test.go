package result

import (
	"errors"
	"testing"

	"github.com/edp1096/mna-spice/pkg/device"
)

func TestWithin(t *testing.T) {
	tests := []struct {
		a, b float64
		want bool
	}{
		{0, 0, true},
		{1, 1, true},
		{10, 10.00001, true},
		{10, 10.001, false},
		{0, 1e-18, false}, // relative rule has no absolute floor
		{-0.05, -0.05, true},
		{1, -1, false},
	}

	for _, tt := range tests {
		if got := Within(tt.a, tt.b, 1e-5); got != tt.want {
			t.Errorf("Within(%g, %g) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}

	if !WithinComplex(complex(5, 0), complex(5, 0), 1e-5) {
		t.Errorf("identical phasors do not match")
	}
	if WithinComplex(complex(5, 1e-20), complex(5, 0), 1e-5) {
		t.Errorf("tiny imaginary residue matched an exact zero")
	}
}

func TestMatchAcrossKinds(t *testing.T) {
	dc := &DC{X: []float64{0, 10, 5}}
	ac := &AC{X: []complex128{0, 10, 5}}
	tr := NewTransient(3)
	tr.Append(0, []complex128{0, 10, 5})

	if !dc.Match(&DC{X: []float64{0, 10, 5}}, 1e-5) {
		t.Errorf("equal DC results do not match")
	}
	if dc.Match(ac, 1e-5) || ac.Match(dc, 1e-5) || tr.Match(dc, 1e-5) {
		t.Errorf("results of different analyses matched")
	}
	if dc.Match(&DC{X: []float64{0, 10}}, 1e-5) {
		t.Errorf("results of different length matched")
	}
	if dc.Kind() != device.OperatingPointAnalysis || ac.Kind() != device.ACAnalysis || tr.Kind() != device.TransientAnalysis {
		t.Errorf("Kind() mismatch")
	}
}

func TestTransientSteps(t *testing.T) {
	tr := NewTransient(2)
	tr.Append(0, []complex128{0, 1, 0.1})
	tr.Append(0.1, []complex128{0, 2, 0.2})
	tr.Append(0.2, []complex128{0, 3, 0.3})

	if tr.Len() != 3 || len(tr.Times) != 3 {
		t.Fatalf("Len() = %d, Times = %v", tr.Len(), tr.Times)
	}

	ref := NewTransient(2)
	ref.Append(0, []complex128{0, 2, 0.2})
	if !tr.MatchStep(1, ref, 1e-5) {
		t.Errorf("MatchStep(1) = false")
	}
	if tr.MatchStep(0, ref, 1e-5) {
		t.Errorf("MatchStep(0) matched a different step")
	}
	if tr.MatchStep(7, ref, 1e-5) {
		t.Errorf("MatchStep accepted an out of range step")
	}

	if _, err := tr.Step(3); !errors.Is(err, ErrStep) {
		t.Errorf("Step(3) error = %v, want ErrStep", err)
	}
	if _, err := tr.Step(-1); !errors.Is(err, ErrStep) {
		t.Errorf("Step(-1) error = %v, want ErrStep", err)
	}

	v := tr.NodeVoltages(1)
	if len(v) != 3 || v[0] != 1 || v[2] != 3 {
		t.Errorf("NodeVoltages(1) = %v", v)
	}
	if g := tr.NodeVoltages(0); g[1] != 0 {
		t.Errorf("ground waveform = %v", g)
	}

	other := NewTransient(2)
	other.Append(0, []complex128{0, 1, 0.1})
	if tr.Match(other, 1e-5) {
		t.Errorf("transients with different step counts matched")
	}
}

func TestElementQueries(t *testing.T) {
	r := device.NewResistor("R1", 100)
	r.SetNode(device.Positive, 1)
	r.SetNode(device.Negative, 2)
	c := device.NewCapacitor("C1", 1e-6)
	c.SetNode(device.Positive, 2)
	c.SetNode(device.Negative, 0)

	dc := NewDC([]complex128{0, 10, 5, -0.05}, 3)

	v, err := dc.ElementVoltage(r, device.Positive, device.Negative)
	if err != nil || v != 5 {
		t.Errorf("ElementVoltage(R1) = %g, %v, want 5", v, err)
	}
	i, err := dc.ElementCurrent(r)
	if err != nil || !Within(i, 0.05, 1e-9) {
		t.Errorf("ElementCurrent(R1) = %g, %v, want 0.05", i, err)
	}
	if _, err := dc.ElementVoltage(r, device.Anode, device.Negative); !errors.Is(err, ErrNoTerminal) {
		t.Errorf("missing terminal error = %v, want ErrNoTerminal", err)
	}
	if _, err := dc.ElementCurrent(c); !errors.Is(err, device.ErrNotImplemented) {
		t.Errorf("capacitor current error = %v, want device.ErrNotImplemented", err)
	}
	if dc.BranchCurrent(0) != -0.05 {
		t.Errorf("BranchCurrent(0) = %g", dc.BranchCurrent(0))
	}

	ac := NewAC(1e3, []complex128{0, 10, 5i, 0}, 3)
	vac, err := ac.ElementVoltage(r, device.Positive, device.Negative)
	if err != nil || vac != 10-5i {
		t.Errorf("AC ElementVoltage = %v, %v", vac, err)
	}

	tr := NewTransient(3)
	tr.Append(0, []complex128{0, 4, 2, -0.02})
	vt, err := tr.ElementVoltage(0, r, device.Positive, device.Negative)
	if err != nil || vt != 2 {
		t.Errorf("transient ElementVoltage = %g, %v", vt, err)
	}
	if _, err := tr.ElementCurrent(1, r); !errors.Is(err, ErrStep) {
		t.Errorf("ElementCurrent(1) error = %v, want ErrStep", err)
	}
}

func TestACStoresCopy(t *testing.T) {
	x := []complex128{0, 1}
	ac := NewAC(1, x, 2)
	x[1] = 99
	if ac.X[1] != 1 {
		t.Errorf("AC result aliases the solver vector")
	}
}
