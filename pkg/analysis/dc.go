package analysis

import (
	"fmt"

	"github.com/edp1096/mna-spice/pkg/circuit"
	"github.com/edp1096/mna-spice/pkg/device"
	"github.com/edp1096/mna-spice/pkg/result"
)

// sweepSource is a DC voltage or current source whose level can be stepped.
type sweepSource interface {
	device.Device
	GetValue() float64
	SetValue(value float64)
}

// SweepPoint is one solved operating point of a DC sweep.
type SweepPoint struct {
	Values []float64 // source values, outer sweep first
	Result *result.DC
}

// DCSweep re-runs the operating point while stepping one or two sources.
type DCSweep struct {
	OperatingPoint
	sourceNames []string    // Names of voltage/current sources to sweep
	startVals   []float64   // Start values for each source
	stopVals    []float64   // Stop values for each source
	increments  []float64   // Incremental value of steps for each source
	sweepVals   [][]float64 // Generated sweep values for each source
	points      []SweepPoint
}

func NewDCSweep(sources []string, starts, stops, increments []float64) (*DCSweep, error) {
	if len(sources) != len(starts) || len(sources) != len(stops) || len(sources) != len(increments) {
		return nil, fmt.Errorf("inconsistent parameter lengths: %w", ErrInvalidParameter)
	}
	if len(sources) < 1 || len(sources) > 2 {
		return nil, fmt.Errorf("unsupported number of sweep sources %d: %w", len(sources), ErrInvalidParameter)
	}

	dc := &DCSweep{
		OperatingPoint: *NewOP(),
		sourceNames:    sources,
		startVals:      starts,
		stopVals:       stops,
		increments:     increments,
		sweepVals:      make([][]float64, len(sources)),
	}

	for i := range sources {
		if increments[i] <= 0 || stops[i] < starts[i] {
			return nil, fmt.Errorf("sweep %s %g..%g step %g: %w", sources[i], starts[i], stops[i], increments[i], ErrInvalidParameter)
		}
		dc.sweepVals[i] = sweepValues(starts[i], stops[i], increments[i])
	}

	return dc, nil
}

// sweepValues steps by index so the stop value is not lost to rounding.
func sweepValues(start, stop, inc float64) []float64 {
	n := int((stop-start)/inc + 1e-9)
	vals := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		vals = append(vals, start+float64(i)*inc)
	}
	return vals
}

func (dc *DCSweep) findSource(name string) (sweepSource, error) {
	dev, err := dc.Circuit.GetDevice(name)
	if err != nil {
		return nil, err
	}
	switch dev.(type) {
	case *device.VoltageSource, *device.CurrentSource:
		return dev.(sweepSource), nil
	}
	return nil, fmt.Errorf("%s is not an independent source: %w", name, ErrInvalidParameter)
}

func (dc *DCSweep) Solve() error {
	sources := make([]sweepSource, len(dc.sourceNames))
	origVals := make([]float64, len(dc.sourceNames))
	for i, name := range dc.sourceNames {
		src, err := dc.findSource(name)
		if err != nil {
			return fmt.Errorf("source %s: %w", name, err)
		}
		sources[i] = src
		origVals[i] = src.GetValue()
	}
	defer func() {
		for i, src := range sources {
			src.SetValue(origVals[i])
		}
	}()

	dc.points = dc.points[:0]

	if len(sources) == 1 {
		for _, val := range dc.sweepVals[0] {
			sources[0].SetValue(val)
			if err := dc.solvePoint(val); err != nil {
				return fmt.Errorf("at %s=%g: %w", dc.sourceNames[0], val, err)
			}
		}
		return nil
	}

	for _, val1 := range dc.sweepVals[0] {
		sources[0].SetValue(val1)
		for _, val2 := range dc.sweepVals[1] {
			sources[1].SetValue(val2)
			if err := dc.solvePoint(val1, val2); err != nil {
				return fmt.Errorf("at %s=%g, %s=%g: %w", dc.sourceNames[0], val1, dc.sourceNames[1], val2, err)
			}
		}
	}

	return nil
}

func (dc *DCSweep) solvePoint(vals ...float64) error {
	if err := dc.OperatingPoint.Solve(); err != nil {
		return err
	}
	dc.points = append(dc.points, SweepPoint{
		Values: vals,
		Result: result.NewDC(dc.solution, dc.system.Nodes()),
	})
	return nil
}

func (dc *DCSweep) SolveTopology(devices []device.Device, nets []*circuit.Net) error {
	dc.useTopology(devices, nets)
	return dc.Solve()
}

// Points returns the sweep in solve order.
func (dc *DCSweep) Points() []SweepPoint { return dc.points }
