package device

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/edp1096/mna-spice/pkg/matrix"
)

func near(a, b complex128) bool { return cmplx.Abs(a-b) <= 1e-12*math.Max(1, cmplx.Abs(b)) }

// connect wires a two-terminal device between nodes a and b.
func connect(d Device, a, b Role, na, nb int) Device {
	d.SetNode(a, na)
	d.SetNode(b, nb)
	return d
}

func TestResistorStampIncludesGround(t *testing.T) {
	s := matrix.NewSystem(2, 0)
	r := connect(NewResistor("R1", 100), Positive, Negative, 1, 0)
	r.StampDC(s, &CircuitStatus{Mode: OperatingPointAnalysis, Branch: -1})

	want := mat.NewCDense(2, 2, []complex128{
		0.01, -0.01,
		-0.01, 0.01,
	})
	if !mat.CEqualApprox(s.G, want, 1e-15) {
		t.Errorf("G = %v, want %v", s.G.RawCMatrix().Data, want.RawCMatrix().Data)
	}
}

func TestReactiveAdmittances(t *testing.T) {
	const f = 1e9
	omega := 2 * math.Pi * f

	tests := []struct {
		name string
		dev  Device
		want complex128
	}{
		{"capacitor", NewCapacitor("C1", 1e-9), complex(0, -omega*1e-9)},
		{"inductor", NewInductor("L1", 1e-9), complex(0, 1/(omega*1e-9))},
		{"resistor", NewResistor("R1", 50), 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := matrix.NewSystem(3, 0)
			connect(tt.dev, Positive, Negative, 1, 2)
			tt.dev.StampAC(s, &CircuitStatus{Mode: ACAnalysis, Frequency: f, Branch: -1})

			if got := s.G.At(1, 1); !near(got, tt.want) {
				t.Errorf("G[1][1] = %v, want %v", got, tt.want)
			}
			if got := s.G.At(1, 2); !near(got, -tt.want) {
				t.Errorf("G[1][2] = %v, want %v", got, -tt.want)
			}
		})
	}
}

func TestCapacitorTransientCompanion(t *testing.T) {
	s := matrix.NewSystem(2, 0)
	c := connect(NewCapacitor("C1", 1e-6), Positive, Negative, 1, 0)

	status := &CircuitStatus{
		Solution: Solution{X: []complex128{0, 3}, Nodes: 2},
		Mode:     TransientAnalysis,
		TimeStep: 1e-3,
		Branch:   -1,
	}
	c.StampTransient(s, status)

	if got := s.G.At(1, 1); !near(got, 1e-3) {
		t.Errorf("geq = %v, want C/dt = 1e-3", got)
	}
	if got := s.Z.At(1, 0); !near(got, 3e-3) {
		t.Errorf("history source = %v, want 3e-3", got)
	}
}

func TestInductorTransientCompanion(t *testing.T) {
	s := matrix.NewSystem(2, 0)
	l := connect(NewInductor("L1", 1e-3), Positive, Negative, 1, 0)

	status := &CircuitStatus{
		Solution: Solution{X: []complex128{0, 2}, Nodes: 2},
		Mode:     TransientAnalysis,
		TimeStep: 1e-6,
		Branch:   -1,
	}
	l.StampTransient(s, status)

	if got := s.G.At(1, 1); !near(got, 1e-3) {
		t.Errorf("geq = %v, want dt/L = 1e-3", got)
	}
	if got := s.Z.At(1, 0); !near(got, -2e-3) {
		t.Errorf("history source = %v, want -2e-3", got)
	}
}

func TestDCLimits(t *testing.T) {
	s := matrix.NewSystem(3, 0)
	connect(NewCapacitor("C1", 1e-9), Positive, Negative, 1, 0).StampDC(s, &CircuitStatus{Branch: -1})
	connect(NewInductor("L1", 1e-9), Positive, Negative, 2, 0).StampDC(s, &CircuitStatus{Branch: -1})

	if got := real(s.G.At(1, 1)); got <= 0 || got > 1e-6 {
		t.Errorf("capacitor DC conductance = %g, want a small leakage", got)
	}
	if got := real(s.G.At(2, 2)); got < 1e3 {
		t.Errorf("inductor DC conductance = %g, want a near short", got)
	}
}

func TestVoltageSourceStamps(t *testing.T) {
	tests := []struct {
		name string
		src  *VoltageSource
		mode AnalysisMode
		want complex128
	}{
		{"dc", NewDCVoltageSource("V1", 10), OperatingPointAnalysis, 10},
		{"dc source in ac", NewDCVoltageSource("V1", 10), ACAnalysis, 0},
		{"ac magnitude", NewACVoltageSource("V1", 0, 10, 0), ACAnalysis, 10},
		{"ac phase", NewACVoltageSource("V1", 0, 2, 90), ACAnalysis, 2i},
		{"ac source dc level", NewACVoltageSource("V1", 1.5, 10, 0), OperatingPointAnalysis, 1.5},
		{"sin at t=0", NewSinVoltageSource("V1", 1, 10, 1e3, 0), TransientAnalysis, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := matrix.NewSystem(3, 1)
			connect(tt.src, Positive, Negative, 1, 2)
			status := &CircuitStatus{Mode: tt.mode, Branch: 0}
			switch tt.mode {
			case ACAnalysis:
				tt.src.StampAC(s, status)
			case TransientAnalysis:
				tt.src.StampTransient(s, status)
			default:
				tt.src.StampDC(s, status)
			}

			if s.B.At(1, 0) != 1 || s.B.At(2, 0) != -1 {
				t.Errorf("B column = [%v %v], want [1 -1]", s.B.At(1, 0), s.B.At(2, 0))
			}
			if s.C.At(0, 1) != 1 || s.C.At(0, 2) != -1 {
				t.Errorf("C row = [%v %v], want [1 -1]", s.C.At(0, 1), s.C.At(0, 2))
			}
			if got := s.Z.At(3, 0); !near(got, tt.want) {
				t.Errorf("branch rhs = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCurrentSourceInjectsIntoPositive(t *testing.T) {
	s := matrix.NewSystem(3, 0)
	src := NewDCCurrentSource("I1", 2)
	connect(src, Positive, Negative, 1, 2)
	src.StampDC(s, &CircuitStatus{Branch: -1})

	if got := s.Z.At(1, 0); got != 2 {
		t.Errorf("z[pos] = %v, want 2", got)
	}
	if got := s.Z.At(2, 0); got != -2 {
		t.Errorf("z[neg] = %v, want -2", got)
	}

	if i, err := src.Current(Solution{}); err != nil || i != 2 {
		t.Errorf("Current() = %v, %v, want 2", i, err)
	}
	src.SetValue(-0.5)
	if i, _ := src.Current(Solution{X: []complex128{0, 9, 9}, Nodes: 3}); i != -0.5 {
		t.Errorf("Current() after SetValue = %v, want -0.5", i)
	}
}

func TestReactiveCurrentNotImplemented(t *testing.T) {
	for _, d := range []Device{NewCapacitor("C1", 1e-6), NewInductor("L1", 1e-3)} {
		if _, err := d.Current(Solution{}); !errors.Is(err, ErrNotImplemented) {
			t.Errorf("%s: Current error = %v, want ErrNotImplemented", d.GetName(), err)
		}
	}
}

func TestVCVSCoupling(t *testing.T) {
	tests := []struct {
		name    string
		vcvs    *VCVS
		mode    AnalysisMode
		coupled bool
	}{
		{"all modes in dc", NewVCVS("E1", 4, InAllModes), OperatingPointAnalysis, true},
		{"dc variant in ac", NewDCVCVS("E1", 4), ACAnalysis, false},
		{"dc variant in transient", NewDCVCVS("E1", 4), TransientAnalysis, true},
		{"ac variant in ac", NewACVCVS("E1", 4), ACAnalysis, true},
		{"ac variant in dc", NewACVCVS("E1", 4), OperatingPointAnalysis, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.vcvs
			e.SetNode(Positive, 1)
			e.SetNode(Negative, 0)
			e.SetNode(ControlPositive, 2)
			e.SetNode(ControlNegative, 3)

			s := matrix.NewSystem(4, 1)
			status := &CircuitStatus{Mode: tt.mode, Branch: 0}
			switch tt.mode {
			case ACAnalysis:
				e.StampAC(s, status)
			case TransientAnalysis:
				e.StampTransient(s, status)
			default:
				e.StampDC(s, status)
			}

			wantCp, wantCn := complex128(0), complex128(0)
			if tt.coupled {
				wantCp, wantCn = -4, 4
			}
			if got := s.C.At(0, 2); got != wantCp {
				t.Errorf("C[k][ctrl+] = %v, want %v", got, wantCp)
			}
			if got := s.C.At(0, 3); got != wantCn {
				t.Errorf("C[k][ctrl-] = %v, want %v", got, wantCn)
			}
			if got := s.C.At(0, 1); got != 1 {
				t.Errorf("C[k][pos] = %v, want 1", got)
			}
		})
	}
}

func TestCCVSUsesControlBranch(t *testing.T) {
	ctrl := NewDCVoltageSource("V1", 1)
	ctrl.SetBranch(0)
	h := NewCCVS("H1", 50, ctrl, InAllModes)
	h.SetNode(Positive, 1)

	s := matrix.NewSystem(2, 2)
	h.StampDC(s, &CircuitStatus{Mode: OperatingPointAnalysis, Branch: 1})

	if got := s.D.At(1, 0); got != -50 {
		t.Errorf("D[h][ctrl] = %v, want -50", got)
	}
	if got := s.B.At(1, 1); got != 1 {
		t.Errorf("B[pos][h] = %v, want 1", got)
	}
}

func TestCCVSUnnumberedControlStampsNoCoupling(t *testing.T) {
	ctrl := NewDCVoltageSource("V1", 1)
	h := NewCCVS("H1", 50, ctrl, InAllModes)
	h.SetNode(Positive, 1)

	s := matrix.NewSystem(2, 2)
	h.StampDC(s, &CircuitStatus{Mode: OperatingPointAnalysis, Branch: 1})

	for j := 0; j < 2; j++ {
		if got := s.D.At(1, j); got != 0 {
			t.Errorf("D[h][%d] = %v, want 0", j, got)
		}
	}
}

func TestOpAmpStamp(t *testing.T) {
	u := NewOpAmp("U1", 1e5)
	u.SetNode(NonInverting, 1)
	u.SetNode(Inverting, 2)
	u.SetNode(Output, 3)

	s := matrix.NewSystem(4, 1)
	u.StampDC(s, &CircuitStatus{Mode: OperatingPointAnalysis, Branch: 0})

	if s.B.At(3, 0) != 1 || s.C.At(0, 3) != 1 {
		t.Errorf("output incidence missing")
	}
	if s.C.At(0, 1) != -1e5 || s.C.At(0, 2) != 1e5 {
		t.Errorf("input coupling = [%v %v], want [-1e5 1e5]", s.C.At(0, 1), s.C.At(0, 2))
	}
	if len(u.ConductivePaths()) != 1 {
		t.Errorf("ConductivePaths = %v", u.ConductivePaths())
	}
}

func TestDiodeLinearize(t *testing.T) {
	d := NewDiode("D1", 5e-10, 1, 0.026)
	d.SetNode(Anode, 1)
	d.SetNode(Cathode, 0)

	g, i0 := d.Linearize(Solution{X: []complex128{0, 0}, Nodes: 2})
	if want := 5e-10 / 0.026; math.Abs(g-want) > 1e-20 {
		t.Errorf("g(0) = %g, want %g", g, want)
	}
	if i0 != 0 {
		t.Errorf("i0(0) = %g, want 0", i0)
	}

	// Reverse bias saturates at -Is.
	i, err := d.Current(Solution{X: []complex128{0, -10}, Nodes: 2})
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if math.Abs(real(i)+5e-10) > 1e-18 {
		t.Errorf("reverse current = %g, want -5e-10", real(i))
	}

	// Forward voltage is clamped.
	high, _ := d.Current(Solution{X: []complex128{0, 5}, Nodes: 2})
	clamp, _ := d.Current(Solution{X: []complex128{0, 0.8}, Nodes: 2})
	if high != clamp {
		t.Errorf("current above clamp %v differs from current at clamp %v", high, clamp)
	}
}

func TestDiodeACStampsConductanceOnly(t *testing.T) {
	d := NewDiode("D1", 1e-14, 1, 0.026)
	connect(d, Anode, Cathode, 1, 0)
	op := Solution{X: []complex128{0, 0.6}, Nodes: 2}

	dc := matrix.NewSystem(2, 0)
	d.StampDC(dc, &CircuitStatus{Solution: op, Mode: OperatingPointAnalysis, Branch: -1})
	ac := matrix.NewSystem(2, 0)
	d.StampAC(ac, &CircuitStatus{Solution: op, Mode: ACAnalysis, Frequency: 1e3, Branch: -1})

	if ac.G.At(1, 1) != dc.G.At(1, 1) {
		t.Errorf("AC conductance %v differs from DC %v", ac.G.At(1, 1), dc.G.At(1, 1))
	}
	if dc.Z.At(1, 0) == 0 {
		t.Errorf("DC stamp carries no intercept current")
	}
	if ac.Z.At(1, 0) != 0 || ac.Z.At(0, 0) != 0 {
		t.Errorf("AC stamp injected %v, want no source term", ac.Z.At(1, 0))
	}
}

func TestDiodeModelParameters(t *testing.T) {
	d := NewDefaultDiode("D1")
	d.SetModelParameters(map[string]float64{"is": 1e-12, "n": 2, "temp": 27})

	if d.Is != 1e-12 || d.N != 2 {
		t.Errorf("parameters not applied: Is=%g N=%g", d.Is, d.N)
	}
	if math.Abs(d.Vt-0.025865) > 1e-4 {
		t.Errorf("Vt(27C) = %g", d.Vt)
	}
}

func TestStampOrderIndependence(t *testing.T) {
	build := func() []Device {
		return []Device{
			connect(NewResistor("R1", 100), Positive, Negative, 1, 2),
			connect(NewResistor("R2", 220), Positive, Negative, 2, 0),
			connect(NewCapacitor("C1", 1e-6), Positive, Negative, 1, 0),
			connect(NewDCCurrentSource("I1", 1e-3), Positive, Negative, 2, 0),
		}
	}

	forward := matrix.NewSystem(3, 0)
	for _, d := range build() {
		d.StampDC(forward, &CircuitStatus{Branch: -1})
	}

	devs := build()
	backward := matrix.NewSystem(3, 0)
	for i := len(devs) - 1; i >= 0; i-- {
		devs[i].StampDC(backward, &CircuitStatus{Branch: -1})
	}

	if !mat.CEqualApprox(forward.G, backward.G, 1e-15) || !mat.CEqualApprox(forward.Z, backward.Z, 1e-15) {
		t.Errorf("stamp result depends on order")
	}
}

func TestSolutionAccessors(t *testing.T) {
	sol := Solution{X: []complex128{0, 10, 5, -0.05}, Nodes: 3}

	if sol.Voltage(0) != 0 || sol.Voltage(-1) != 0 || sol.Voltage(9) != 0 {
		t.Errorf("ground or unknown node must read 0")
	}
	if sol.Voltage(2) != 5 {
		t.Errorf("Voltage(2) = %v", sol.Voltage(2))
	}
	if sol.BranchCurrent(0) != -0.05 {
		t.Errorf("BranchCurrent(0) = %v", sol.BranchCurrent(0))
	}
	if sol.BranchCurrent(1) != 0 {
		t.Errorf("BranchCurrent(1) = %v, want 0", sol.BranchCurrent(1))
	}
}

func TestRoleNames(t *testing.T) {
	for _, r := range []Role{Positive, Negative, Anode, Cathode, Inverting, NonInverting, Output, ControlPositive, ControlNegative, Reference} {
		got, ok := ParseRole(r.String())
		if !ok || got != r {
			t.Errorf("ParseRole(%q) = %v, %v", r.String(), got, ok)
		}
	}
	if _, ok := ParseRole("collector"); ok {
		t.Errorf("ParseRole accepted an unknown role")
	}
}

func TestTerminals(t *testing.T) {
	d := NewDiode("D1", 1e-14, 1, 0.026)
	if !d.HasTerminal(Anode) || d.HasTerminal(Positive) {
		t.Errorf("diode terminals = %v", d.Terminals())
	}
	d.SetNode(Positive, 7)
	if d.Node(Positive) != 0 {
		t.Errorf("SetNode accepted a foreign role")
	}
}
