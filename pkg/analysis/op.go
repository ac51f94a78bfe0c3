package analysis

import (
	"fmt"

	"github.com/edp1096/mna-spice/pkg/circuit"
	"github.com/edp1096/mna-spice/pkg/device"
	"github.com/edp1096/mna-spice/pkg/result"
)

type OperatingPoint struct {
	BaseAnalysis
	result     *result.DC
	solution   []complex128
	iterations int
}

var _ Solver = (*OperatingPoint)(nil)

func NewOP() *OperatingPoint {
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(),
	}
}

// Solve computes the operating point with Newton-Raphson. A failed solve
// discards the previous result.
func (op *OperatingPoint) Solve() error {
	op.result, op.solution = nil, nil

	if err := op.setup(); err != nil {
		return fmt.Errorf("operating point setup error: %w", err)
	}

	x, iter, err := op.doNRiter()
	op.iterations = iter
	if err != nil {
		return err
	}

	op.storeResults(x)
	return nil
}

// SolveTopology replaces the accumulated topology and solves.
func (op *OperatingPoint) SolveTopology(devices []device.Device, nets []*circuit.Net) error {
	op.useTopology(devices, nets)
	return op.Solve()
}

func (op *OperatingPoint) storeResults(x []complex128) {
	op.solution = x
	op.result = result.NewDC(x, op.system.Nodes())
}

// Result returns the stored operating point, or nil before the first
// successful Solve.
func (op *OperatingPoint) Result() result.Result {
	if op.result == nil {
		return nil
	}
	return op.result
}

func (op *OperatingPoint) DC() *result.DC { return op.result }

// Iterations reports how many NR updates followed the first solve. Linear
// circuits report 1.
func (op *OperatingPoint) Iterations() int { return op.iterations }

// Solution returns the raw complex vector of the last solve.
func (op *OperatingPoint) Solution() device.Solution {
	if op.system == nil {
		return device.Solution{}
	}
	return device.Solution{X: op.solution, Nodes: op.system.Nodes()}
}
