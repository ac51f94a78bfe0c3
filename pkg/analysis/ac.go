package analysis

import (
	"fmt"
	"math"

	"github.com/edp1096/mna-spice/pkg/circuit"
	"github.com/edp1096/mna-spice/pkg/device"
	"github.com/edp1096/mna-spice/pkg/result"
)

// ACAnalysis solves the phasor system once at a single frequency.
type ACAnalysis struct {
	BaseAnalysis
	frequency float64
	op        device.Solution
	result    *result.AC
}

var _ Solver = (*ACAnalysis)(nil)

// NewAC creates an AC analysis. A zero frequency must be set with
// SetFrequency before Solve.
func NewAC(freq float64) *ACAnalysis {
	return &ACAnalysis{
		BaseAnalysis: *NewBaseAnalysis(),
		frequency:    freq,
	}
}

func (ac *ACAnalysis) SetFrequency(freq float64) error {
	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return fmt.Errorf("frequency %g: %w", freq, ErrInvalidParameter)
	}
	ac.frequency = freq
	return nil
}

func (ac *ACAnalysis) Frequency() float64 { return ac.frequency }

// SetOperatingPoint supplies the linearization point of nonlinear elements.
// Without it they are linearized at zero.
func (ac *ACAnalysis) SetOperatingPoint(sol device.Solution) { ac.op = sol }

func (ac *ACAnalysis) Solve() error {
	ac.result = nil
	if ac.frequency <= 0 {
		return ErrNoFrequency
	}
	if err := ac.setup(); err != nil {
		return fmt.Errorf("ac setup error: %w", err)
	}

	x, err := ac.solveAt(ac.frequency)
	if err != nil {
		return err
	}

	ac.result = result.NewAC(ac.frequency, x, ac.system.Nodes())
	return nil
}

func (ac *ACAnalysis) SolveTopology(devices []device.Device, nets []*circuit.Net) error {
	ac.useTopology(devices, nets)
	return ac.Solve()
}

func (ac *ACAnalysis) solveAt(freq float64) ([]complex128, error) {
	sol := ac.op
	if len(sol.X) != ac.system.Nodes()+ac.system.Branches() {
		sol = device.Solution{X: ac.zeroSolution(), Nodes: ac.system.Nodes()}
	}

	status := &device.CircuitStatus{
		Solution:  sol,
		Mode:      device.ACAnalysis,
		Frequency: freq,
	}
	if err := ac.stamp(status); err != nil {
		return nil, fmt.Errorf("at f=%g: %w", freq, err)
	}

	x, err := ac.solveSystem()
	if err != nil {
		return nil, fmt.Errorf("at f=%g: %w", freq, err)
	}
	ac.logger.Printf("ac solved at f=%g", freq)
	return x, nil
}

func (ac *ACAnalysis) Result() result.Result {
	if ac.result == nil {
		return nil
	}
	return ac.result
}

func (ac *ACAnalysis) AC() *result.AC { return ac.result }

// ACSweep repeats the single-frequency solve over a DEC, OCT or LIN grid,
// after computing the DC operating point of the circuit.
type ACSweep struct {
	ACAnalysis
	startFreq   float64
	stopFreq    float64
	numPoints   int
	pointsType  string // "DEC", "OCT", "LIN"
	frequencies []float64
	results     []*result.AC
}

func NewACSweep(fStart, fStop float64, nPoints int, pType string) *ACSweep {
	return &ACSweep{
		ACAnalysis: *NewAC(fStart),
		startFreq:  fStart,
		stopFreq:   fStop,
		numPoints:  nPoints,
		pointsType: pType,
	}
}

func (sw *ACSweep) Solve() error {
	sw.result, sw.results = nil, nil
	if sw.startFreq <= 0 || sw.stopFreq < sw.startFreq || sw.numPoints < 1 {
		return fmt.Errorf("sweep %g..%g with %d points: %w", sw.startFreq, sw.stopFreq, sw.numPoints, ErrInvalidParameter)
	}
	if err := sw.generateFrequencyPoints(); err != nil {
		return err
	}

	op := NewOP()
	op.Circuit = sw.Circuit
	op.backend = sw.backend
	op.logger = sw.logger
	op.convergence = sw.convergence
	if err := op.Solve(); err != nil {
		return fmt.Errorf("operating point analysis error: %w", err)
	}
	sw.op = op.Solution()

	if err := sw.setup(); err != nil {
		return fmt.Errorf("ac setup error: %w", err)
	}

	for _, freq := range sw.frequencies {
		x, err := sw.solveAt(freq)
		if err != nil {
			return err
		}
		sw.results = append(sw.results, result.NewAC(freq, x, sw.system.Nodes()))
	}

	if len(sw.results) > 0 {
		sw.result = sw.results[len(sw.results)-1]
	}
	return nil
}

func (sw *ACSweep) SolveTopology(devices []device.Device, nets []*circuit.Net) error {
	sw.useTopology(devices, nets)
	return sw.Solve()
}

func (sw *ACSweep) Frequencies() []float64 { return sw.frequencies }

// Results returns one phasor solution per swept frequency.
func (sw *ACSweep) Results() []*result.AC { return sw.results }

func (sw *ACSweep) generateFrequencyPoints() error {
	sw.frequencies = make([]float64, sw.numPoints)
	if sw.numPoints == 1 {
		sw.frequencies[0] = sw.startFreq
		return nil
	}

	switch sw.pointsType {
	case "DEC": // Decade
		logStart := math.Log10(sw.startFreq)
		logStop := math.Log10(sw.stopFreq)
		step := (logStop - logStart) / float64(sw.numPoints-1)
		for i := range sw.numPoints {
			sw.frequencies[i] = math.Pow(10, logStart+float64(i)*step)
		}

	case "OCT": // Octave
		logStart := math.Log2(sw.startFreq)
		logStop := math.Log2(sw.stopFreq)
		step := (logStop - logStart) / float64(sw.numPoints-1)
		for i := range sw.numPoints {
			sw.frequencies[i] = math.Pow(2, logStart+float64(i)*step)
		}

	case "LIN": // Linear
		step := (sw.stopFreq - sw.startFreq) / float64(sw.numPoints-1)
		for i := range sw.numPoints {
			sw.frequencies[i] = sw.startFreq + float64(i)*step
		}

	default:
		return fmt.Errorf("sweep type %q: %w", sw.pointsType, ErrInvalidParameter)
	}

	return nil
}
