package analysis

import (
	"fmt"
	"io"
	"log"

	"github.com/edp1096/mna-spice/internal/consts"
	"github.com/edp1096/mna-spice/pkg/circuit"
	"github.com/edp1096/mna-spice/pkg/config"
	"github.com/edp1096/mna-spice/pkg/device"
	"github.com/edp1096/mna-spice/pkg/matrix"
	"github.com/edp1096/mna-spice/pkg/result"
)

type StepType int

const (
	LINEAR StepType = iota
	LOGARITHMIC
	PWL
)

func (s StepType) String() string {
	switch s {
	case LINEAR:
		return "linear"
	case LOGARITHMIC:
		return "logarithmic"
	case PWL:
		return "pwl"
	default:
		return "unknown"
	}
}

// Solver is the programmatic surface shared by the DC, AC and transient
// analyses. Topology is accumulated with the Add methods before Solve.
type Solver interface {
	AddElement(d device.Device)
	AddElements(devices []device.Device)
	RemoveElement(id string) error
	AddWire(n *circuit.Net)
	AddWires(nets []*circuit.Net)

	Solve() error
	SolveTopology(devices []device.Device, nets []*circuit.Net) error

	SetFrequency(freq float64) error
	SetTimeStepPoints(tMin, tMax float64, numPoints int, stepType StepType) error
	SetTimeStep(tMin, tMax, tStep float64) error
	SetTolerance(tol float64)

	Result() result.Result
}

// BaseAnalysis owns the circuit, the assembly context and the convergence
// settings. Mode-specific setters fail here and are overridden by the
// analyses that support them.
type BaseAnalysis struct {
	Circuit     *circuit.Circuit
	system      *matrix.System
	backend     matrix.Solver
	logger      *log.Logger
	convergence struct {
		maxIter int
		tol     float64
	}
}

func NewBaseAnalysis() *BaseAnalysis {
	ba := &BaseAnalysis{
		Circuit: circuit.New(""),
		backend: matrix.NewSparseSolver(),
		logger:  log.New(io.Discard, "", 0),
	}

	ba.convergence.maxIter = consts.MaxIterations
	ba.convergence.tol = consts.Tolerance

	return ba
}

func (a *BaseAnalysis) AddElement(d device.Device)          { a.Circuit.AddElement(d) }
func (a *BaseAnalysis) AddElements(devices []device.Device) { a.Circuit.AddElements(devices) }
func (a *BaseAnalysis) RemoveElement(id string) error       { return a.Circuit.RemoveElement(id) }
func (a *BaseAnalysis) AddWire(n *circuit.Net)              { a.Circuit.AddWire(n) }
func (a *BaseAnalysis) AddWires(nets []*circuit.Net)        { a.Circuit.AddWires(nets) }

func (a *BaseAnalysis) SetFrequency(float64) error {
	return fmt.Errorf("SetFrequency: %w", ErrUnsupported)
}

func (a *BaseAnalysis) SetTimeStepPoints(float64, float64, int, StepType) error {
	return fmt.Errorf("SetTimeStepPoints: %w", ErrUnsupported)
}

func (a *BaseAnalysis) SetTimeStep(float64, float64, float64) error {
	return fmt.Errorf("SetTimeStep: %w", ErrUnsupported)
}

// SetTolerance sets the relative tolerance of the NR convergence test.
func (a *BaseAnalysis) SetTolerance(tol float64) { a.convergence.tol = tol }

func (a *BaseAnalysis) Tolerance() float64 { return a.convergence.tol }

// SetMaxIterations caps the NR updates performed after the first solve.
func (a *BaseAnalysis) SetMaxIterations(n int) { a.convergence.maxIter = n }

func (a *BaseAnalysis) SetBackend(s matrix.Solver) { a.backend = s }

// SetLogger routes progress messages to l. A nil logger silences them.
func (a *BaseAnalysis) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	a.logger = l
	if a.system != nil {
		a.system.SetLogger(l)
	}
}

// Configure applies the solver section of cfg.
func (a *BaseAnalysis) Configure(cfg *config.Config) error {
	backend, err := matrix.NewSolver(cfg.Solver.Backend)
	if err != nil {
		return err
	}
	a.backend = backend
	a.convergence.tol = cfg.Solver.Tolerance
	a.convergence.maxIter = cfg.Solver.MaxIterations
	return nil
}

func (a *BaseAnalysis) GetCircuit() *circuit.Circuit { return a.Circuit }

// System exposes the assembly context of the last solve.
func (a *BaseAnalysis) System() *matrix.System { return a.system }

func (a *BaseAnalysis) useTopology(devices []device.Device, nets []*circuit.Net) {
	a.Circuit = circuit.FromTopology(a.Circuit.Name(), devices, nets)
}

// setup validates and numbers the circuit and allocates a fresh system.
func (a *BaseAnalysis) setup() error {
	if err := a.Circuit.Setup(); err != nil {
		return err
	}
	a.system = matrix.NewSystem(a.Circuit.NumNodes(), a.Circuit.NumBranches())
	a.system.SetLogger(a.logger)
	a.logger.Printf("circuit %q: %d nodes, %d branches", a.Circuit.Name(), a.Circuit.NumNodes(), a.Circuit.NumBranches())
	return nil
}

func (a *BaseAnalysis) zeroSolution() []complex128 {
	return make([]complex128, a.system.Nodes()+a.system.Branches())
}

// stamp rebuilds the system from scratch for the mode in status. It fails
// when an element wrote outside the system.
func (a *BaseAnalysis) stamp(status *device.CircuitStatus) error {
	a.system.Reset()
	for _, dev := range a.Circuit.GetDevices() {
		st := *status
		st.Branch = a.Circuit.BranchOf(dev)
		switch status.Mode {
		case device.ACAnalysis:
			dev.StampAC(a.system, &st)
		case device.TransientAnalysis:
			dev.StampTransient(a.system, &st)
		default:
			dev.StampDC(a.system, &st)
		}
	}
	if err := a.system.Err(); err != nil {
		return fmt.Errorf("%s stamp: %w", status.Mode, err)
	}
	return nil
}

func (a *BaseAnalysis) solveSystem() ([]complex128, error) {
	x, err := a.system.Solve(a.backend)
	if err != nil {
		return nil, fmt.Errorf("matrix solve error: %w", err)
	}
	return x, nil
}

// CheckConvergence applies the result equality rule to every entry.
func (a *BaseAnalysis) CheckConvergence(oldSol, newSol []complex128) bool {
	if len(oldSol) != len(newSol) {
		return false
	}
	for i := range oldSol {
		if !result.WithinComplex(newSol[i], oldSol[i], a.convergence.tol) {
			return false
		}
	}
	return true
}

// doNRiter runs Newton-Raphson from a zero guess. It returns the converged
// solution and the number of updates that followed the first solve.
func (a *BaseAnalysis) doNRiter() ([]complex128, int, error) {
	x := a.zeroSolution()
	status := &device.CircuitStatus{Mode: device.OperatingPointAnalysis}

	for iter := 0; iter <= a.convergence.maxIter; iter++ {
		status.Solution = device.Solution{X: x, Nodes: a.system.Nodes()}
		if err := a.stamp(status); err != nil {
			return nil, iter, err
		}

		next, err := a.solveSystem()
		if err != nil {
			return nil, iter, fmt.Errorf("NR iteration %d: %w", iter, err)
		}

		if a.CheckConvergence(x, next) {
			a.logger.Printf("operating point converged after %d iterations", iter)
			return next, iter, nil
		}
		x = next
	}

	return nil, a.convergence.maxIter, fmt.Errorf("failed to converge in %d iterations: %w", a.convergence.maxIter, ErrNoConvergence)
}

// New builds an empty analysis of the given mode configured from cfg. A nil
// cfg keeps the defaults.
func New(mode device.AnalysisMode, cfg *config.Config) (Solver, error) {
	var (
		s    Solver
		base *BaseAnalysis
	)

	switch mode {
	case device.OperatingPointAnalysis:
		op := NewOP()
		s, base = op, &op.BaseAnalysis
	case device.ACAnalysis:
		ac := NewAC(0)
		s, base = ac, &ac.BaseAnalysis
	case device.TransientAnalysis:
		tr := NewTransient()
		s, base = tr, &tr.BaseAnalysis
	default:
		return nil, fmt.Errorf("analysis mode %d: %w", mode, ErrUnsupported)
	}

	if cfg != nil {
		if err := base.Configure(cfg); err != nil {
			return nil, err
		}
	}
	return s, nil
}
