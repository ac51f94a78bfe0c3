package analysis

import (
	"fmt"

	"github.com/edp1096/mna-spice/pkg/circuit"
	"github.com/edp1096/mna-spice/pkg/device"
	"github.com/edp1096/mna-spice/pkg/result"
)

// Transient steps the circuit over a fixed time grid, one linear solve per
// step, starting from the DC operating point.
type Transient struct {
	BaseAnalysis
	startTime float64
	stopTime  float64
	timeStep  float64
	numPoints int
	stepType  StepType
	gridSet   bool
	times     []float64
	result    *result.Transient
}

var _ Solver = (*Transient)(nil)

func NewTransient() *Transient {
	return &Transient{
		BaseAnalysis: *NewBaseAnalysis(),
	}
}

// SetTimeStepPoints divides [tMin, tMax] into numPoints intervals. With
// numPoints == 0 the interval count is derived from a step set earlier.
func (tr *Transient) SetTimeStepPoints(tMin, tMax float64, numPoints int, stepType StepType) error {
	if tMax <= tMin || numPoints < 0 {
		return fmt.Errorf("time range %g..%g with %d points: %w", tMin, tMax, numPoints, ErrInvalidParameter)
	}
	tr.startTime = tMin
	tr.stopTime = tMax
	tr.numPoints = numPoints
	tr.stepType = stepType
	tr.gridSet = true
	return nil
}

// SetTimeStep fixes the step size; the number of points follows from it.
func (tr *Transient) SetTimeStep(tMin, tMax, tStep float64) error {
	if tMax <= tMin || tStep <= 0 || tStep > tMax-tMin {
		return fmt.Errorf("time range %g..%g step %g: %w", tMin, tMax, tStep, ErrInvalidParameter)
	}
	tr.startTime = tMin
	tr.stopTime = tMax
	tr.timeStep = tStep
	tr.numPoints = 0
	tr.stepType = LINEAR
	tr.gridSet = true
	return nil
}

// ExpandTime builds the grid of numPoints+1 instants.
func (tr *Transient) ExpandTime() error {
	if !tr.gridSet {
		return ErrNoTimeGrid
	}

	switch tr.stepType {
	case LINEAR:
	case LOGARITHMIC, PWL:
		return fmt.Errorf("%s: %w", tr.stepType, ErrUnsupportedStep)
	default:
		return fmt.Errorf("step type %d: %w", tr.stepType, ErrUnsupportedStep)
	}

	span := tr.stopTime - tr.startTime
	if tr.numPoints == 0 {
		if tr.timeStep <= 0 {
			return ErrNoTimeGrid
		}
		// Guard against 0.005/1e-5 landing just under an integer.
		tr.numPoints = int(span/tr.timeStep + 1e-9)
	} else {
		tr.timeStep = span / float64(tr.numPoints)
	}
	if tr.numPoints < 1 {
		return fmt.Errorf("time step %g exceeds range %g: %w", tr.timeStep, span, ErrInvalidParameter)
	}

	tr.times = make([]float64, tr.numPoints+1)
	for j := range tr.times {
		tr.times[j] = tr.startTime + float64(j)*tr.timeStep
	}
	return nil
}

func (tr *Transient) Times() []float64 { return tr.times }

func (tr *Transient) TimeStep() float64 { return tr.timeStep }

// State is the solution carried from one time step to the next.
type State struct {
	Solution device.Solution
}

// step stamps the companion models at t with step dt around the previous
// state and solves once.
func (tr *Transient) step(state State, t, dt float64) (State, []complex128, error) {
	status := &device.CircuitStatus{
		Solution: state.Solution,
		Mode:     device.TransientAnalysis,
		Time:     t,
		TimeStep: dt,
	}
	if err := tr.stamp(status); err != nil {
		return state, nil, fmt.Errorf("at t=%g: %w", t, err)
	}

	x, err := tr.solveSystem()
	if err != nil {
		return state, nil, fmt.Errorf("at t=%g: %w", t, err)
	}
	return State{Solution: device.Solution{X: x, Nodes: tr.system.Nodes()}}, x, nil
}

func (tr *Transient) Solve() error {
	tr.result = nil
	if err := tr.ExpandTime(); err != nil {
		return err
	}
	if err := tr.setup(); err != nil {
		return fmt.Errorf("transient setup error: %w", err)
	}

	x0, iter, err := tr.doNRiter()
	if err != nil {
		return fmt.Errorf("initial operating point: %w", err)
	}
	tr.logger.Printf("initial operating point after %d iterations", iter)

	state := State{Solution: device.Solution{X: x0, Nodes: tr.system.Nodes()}}
	res := result.NewTransient(tr.system.Nodes())

	for j := 0; j < tr.numPoints; j++ {
		t := tr.times[j]
		dt := tr.times[j+1] - t

		var x []complex128
		state, x, err = tr.step(state, t, dt)
		if err != nil {
			return err
		}
		res.Append(t, x)
	}

	tr.logger.Printf("transient finished: %d steps of %g s", res.Len(), tr.timeStep)
	tr.result = res
	return nil
}

func (tr *Transient) SolveTopology(devices []device.Device, nets []*circuit.Net) error {
	tr.useTopology(devices, nets)
	return tr.Solve()
}

func (tr *Transient) Result() result.Result {
	if tr.result == nil {
		return nil
	}
	return tr.result
}

func (tr *Transient) Tran() *result.Transient { return tr.result }
