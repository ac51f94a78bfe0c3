// Package netlist loads circuit decks written in YAML or as SPICE netlists.
//
// A YAML deck lists elements, the nets joining their terminals, and the
// analysis to run:
//
//	title: divider
//	elements:
//	  - {name: V1, type: V, value: "10"}
//	  - {name: R1, type: R, value: 1k}
//	  - {name: R2, type: R, value: 1k}
//	nets:
//	  - {name: in, members: [V1.pos, R1.pos]}
//	  - {name: mid, members: [R1.neg, R2.pos]}
//	  - {name: gnd, ground: true, members: [V1.neg, R2.neg]}
//	analysis:
//	  type: op
//
// The same circuit as a SPICE netlist, where node 0 is ground:
//
//	* divider
//	V1 in 0 DC 10
//	R1 in mid 1k
//	R2 mid 0 1k
//	.op
//	.end
package netlist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edp1096/mna-spice/pkg/analysis"
	"github.com/edp1096/mna-spice/pkg/circuit"
	"github.com/edp1096/mna-spice/pkg/config"
	"github.com/edp1096/mna-spice/pkg/device"
)

var (
	ErrValue    = errors.New("netlist: invalid value")
	ErrElement  = errors.New("netlist: invalid element")
	ErrMember   = errors.New("netlist: invalid net member")
	ErrAnalysis = errors.New("netlist: invalid analysis")
)

type Deck struct {
	Title    string        `yaml:"title"`
	Elements []ElementSpec `yaml:"elements"`
	Nets     []NetSpec     `yaml:"nets"`
	Analysis AnalysisSpec  `yaml:"analysis"`
}

type ElementSpec struct {
	Name    string             `yaml:"name"`
	Type    string             `yaml:"type"`    // R, C, L, V, I, E, H, U, D
	Value   string             `yaml:"value"`   // engineering notation, e.g. 4.7k
	Source  string             `yaml:"source"`  // dc, ac, sin, pulse, pwl
	Params  string             `yaml:"params"`  // waveform parameters
	Phase   string             `yaml:"phase"`   // ac phase in degrees
	Offset  string             `yaml:"offset"`  // dc level of an ac source
	Control string             `yaml:"control"` // controlling source of H
	Modes   string             `yaml:"modes"`   // dc, ac or all for E and H
	Model   map[string]float64 `yaml:"model"`   // diode parameters
}

type NetSpec struct {
	Name    string   `yaml:"name"`
	Ground  bool     `yaml:"ground"`
	Members []string `yaml:"members"` // element.role
}

type AnalysisSpec struct {
	Type string    `yaml:"type"` // op, ac, tran, dc
	AC   *ACSpec   `yaml:"ac,omitempty"`
	Tran *TranSpec `yaml:"tran,omitempty"`
	DC   []DCSpec  `yaml:"dc,omitempty"`
}

type ACSpec struct {
	Frequency string `yaml:"frequency"`
	Sweep     string `yaml:"sweep"` // DEC, OCT, LIN
	Start     string `yaml:"start"`
	Stop      string `yaml:"stop"`
	Points    int    `yaml:"points"`
}

type TranSpec struct {
	Start  string `yaml:"start"`
	Stop   string `yaml:"stop"`
	Step   string `yaml:"step"`
	Points int    `yaml:"points"`
}

type DCSpec struct {
	Source    string `yaml:"source"`
	Start     string `yaml:"start"`
	Stop      string `yaml:"stop"`
	Increment string `yaml:"increment"`
}

func Parse(data []byte) (*Deck, error) {
	var deck Deck
	if err := yaml.Unmarshal(data, &deck); err != nil {
		return nil, fmt.Errorf("failed to parse deck: %w", err)
	}
	return &deck, nil
}

// Load reads a deck from path. Files ending in .yaml or .yml are YAML decks,
// anything else is read as a SPICE netlist.
func Load(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return Parse(data)
	default:
		return ParseSPICE(string(data))
	}
}

// Build creates the devices and nets of the deck.
func (d *Deck) Build() ([]device.Device, []*circuit.Net, error) {
	devices := make([]device.Device, 0, len(d.Elements))
	byName := make(map[string]device.Device, len(d.Elements))

	// Controlled sources refer to other elements, so they go second.
	var deferred []ElementSpec
	for _, spec := range d.Elements {
		if strings.EqualFold(spec.Type, "H") {
			deferred = append(deferred, spec)
			continue
		}
		dev, err := createDevice(spec, byName)
		if err != nil {
			return nil, nil, err
		}
		devices = append(devices, dev)
		byName[dev.GetName()] = dev
	}
	for _, spec := range deferred {
		dev, err := createDevice(spec, byName)
		if err != nil {
			return nil, nil, err
		}
		devices = append(devices, dev)
		byName[dev.GetName()] = dev
	}

	nets := make([]*circuit.Net, 0, len(d.Nets))
	for _, ns := range d.Nets {
		n := circuit.NewNet(ns.Name)
		if ns.Ground {
			n = circuit.NewGroundNet(ns.Name)
		}
		for _, member := range ns.Members {
			dev, role, err := parseMember(member, byName)
			if err != nil {
				return nil, nil, fmt.Errorf("net %s: %w", ns.Name, err)
			}
			n.Connect(dev, role)
		}
		nets = append(nets, n)
	}

	return devices, nets, nil
}

func parseMember(member string, byName map[string]device.Device) (device.Device, device.Role, error) {
	name, roleName, ok := strings.Cut(member, ".")
	if !ok {
		return nil, 0, fmt.Errorf("%q is not element.role: %w", member, ErrMember)
	}
	dev, found := byName[name]
	if !found {
		return nil, 0, fmt.Errorf("%q: unknown element %s: %w", member, name, ErrMember)
	}
	role, ok := device.ParseRole(roleName)
	if !ok {
		return nil, 0, fmt.Errorf("%q: unknown role %s: %w", member, roleName, ErrMember)
	}
	return dev, role, nil
}

func parseModes(s string) (device.ModeMask, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return device.InAllModes, nil
	case "dc":
		return device.InDC | device.InTransient, nil
	case "ac":
		return device.InAC, nil
	}
	return 0, fmt.Errorf("modes %q: %w", s, ErrElement)
}

func createDevice(spec ElementSpec, byName map[string]device.Device) (device.Device, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("element without name: %w", ErrElement)
	}

	var value float64
	if spec.Value != "" {
		v, err := ParseValue(spec.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Name, err)
		}
		value = v
	}

	switch strings.ToUpper(spec.Type) {
	case "R":
		return device.NewResistor(spec.Name, value), nil

	case "C":
		return device.NewCapacitor(spec.Name, value), nil

	case "L":
		return device.NewInductor(spec.Name, value), nil

	case "V":
		wave, err := parseWaveform(spec, value)
		if err != nil {
			return nil, err
		}
		switch wave.Type {
		case device.SIN:
			return device.NewSinVoltageSource(spec.Name, wave.Offset, wave.Amplitude, wave.Freq, wave.Phase), nil
		case device.PULSE:
			return device.NewPulseVoltageSource(spec.Name, wave.V1, wave.V2, wave.Delay, wave.Rise, wave.Fall, wave.PWidth, wave.Period), nil
		case device.PWL:
			v, err := device.NewPWLVoltageSource(spec.Name, wave.Times, wave.Values)
			if err != nil {
				return nil, err
			}
			return v, nil
		}
		return device.NewACVoltageSource(spec.Name, wave.Offset, wave.ACMag, wave.ACPhase), nil

	case "I":
		wave, err := parseWaveform(spec, value)
		if err != nil {
			return nil, err
		}
		switch wave.Type {
		case device.SIN:
			return device.NewSinCurrentSource(spec.Name, wave.Offset, wave.Amplitude, wave.Freq, wave.Phase), nil
		case device.PULSE:
			return device.NewPulseCurrentSource(spec.Name, wave.V1, wave.V2, wave.Delay, wave.Rise, wave.Fall, wave.PWidth, wave.Period), nil
		case device.PWL:
			i, err := device.NewPWLCurrentSource(spec.Name, wave.Times, wave.Values)
			if err != nil {
				return nil, err
			}
			return i, nil
		}
		return device.NewACCurrentSource(spec.Name, wave.Offset, wave.ACMag, wave.ACPhase), nil

	case "E":
		modes, err := parseModes(spec.Modes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Name, err)
		}
		return device.NewVCVS(spec.Name, value, modes), nil

	case "H":
		modes, err := parseModes(spec.Modes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Name, err)
		}
		ctrl, ok := byName[spec.Control].(device.BranchDevice)
		if !ok {
			return nil, fmt.Errorf("%s: control %q is not a branch element: %w", spec.Name, spec.Control, ErrElement)
		}
		return device.NewCCVS(spec.Name, value, ctrl, modes), nil

	case "U":
		return device.NewOpAmp(spec.Name, value), nil

	case "D":
		diode := device.NewDefaultDiode(spec.Name)
		if spec.Model != nil {
			diode.SetModelParameters(spec.Model)
		}
		return diode, nil
	}

	return nil, fmt.Errorf("%s: unsupported device type %q: %w", spec.Name, spec.Type, ErrElement)
}

// parseWaveform reads the source description of a V or I element. value is
// the DC level for dc sources and the magnitude for ac sources.
func parseWaveform(spec ElementSpec, value float64) (device.Waveform, error) {
	switch strings.ToLower(spec.Source) {
	case "", "dc":
		return device.Waveform{Type: device.DC, Offset: value}, nil

	case "ac":
		var phase, offset float64
		if spec.Phase != "" {
			p, err := ParseValue(spec.Phase)
			if err != nil {
				return device.Waveform{}, fmt.Errorf("%s: invalid AC phase: %w", spec.Name, err)
			}
			phase = p
		}
		if spec.Offset != "" {
			o, err := ParseValue(spec.Offset)
			if err != nil {
				return device.Waveform{}, fmt.Errorf("%s: invalid DC level: %w", spec.Name, err)
			}
			offset = o
		}
		return device.Waveform{Type: device.DC, Offset: offset, ACMag: value, ACPhase: phase}, nil

	case "sin":
		offset, amplitude, freq, phase, err := parseSinParams(spec.Params)
		if err != nil {
			return device.Waveform{}, fmt.Errorf("%s: %w", spec.Name, err)
		}
		return device.Waveform{Type: device.SIN, Offset: offset, Amplitude: amplitude, Freq: freq, Phase: phase}, nil

	case "pulse":
		v1, v2, delay, rise, fall, pWidth, period, err := parsePulseParams(spec.Params)
		if err != nil {
			return device.Waveform{}, fmt.Errorf("%s: %w", spec.Name, err)
		}
		return device.Waveform{Type: device.PULSE, V1: v1, V2: v2, Delay: delay, Rise: rise, Fall: fall, PWidth: pWidth, Period: period}, nil

	case "pwl":
		times, values, err := parsePWLParams(spec.Params)
		if err != nil {
			return device.Waveform{}, fmt.Errorf("%s: %w", spec.Name, err)
		}
		return device.Waveform{Type: device.PWL, Times: times, Values: values}, nil
	}

	return device.Waveform{}, fmt.Errorf("%s: unsupported source type %q: %w", spec.Name, spec.Source, ErrElement)
}

// NewAnalysis builds the analysis requested by the deck and loads the
// deck's topology into it.
func (d *Deck) NewAnalysis(cfg *config.Config) (analysis.Solver, error) {
	devices, nets, err := d.Build()
	if err != nil {
		return nil, err
	}

	s, err := d.newSolver(cfg)
	if err != nil {
		return nil, err
	}
	s.AddElements(devices)
	s.AddWires(nets)
	return s, nil
}

func (d *Deck) newSolver(cfg *config.Config) (analysis.Solver, error) {
	switch strings.ToLower(d.Analysis.Type) {
	case "", "op":
		return analysis.New(device.OperatingPointAnalysis, cfg)

	case "ac":
		spec := d.Analysis.AC
		if spec == nil {
			return nil, fmt.Errorf("ac analysis without parameters: %w", ErrAnalysis)
		}
		if spec.Sweep != "" {
			start, stop, err := parsePair(spec.Start, spec.Stop)
			if err != nil {
				return nil, err
			}
			sw := analysis.NewACSweep(start, stop, spec.Points, strings.ToUpper(spec.Sweep))
			if cfg != nil {
				if err := sw.Configure(cfg); err != nil {
					return nil, err
				}
			}
			return sw, nil
		}
		freq, err := ParseValue(spec.Frequency)
		if err != nil {
			return nil, fmt.Errorf("ac frequency: %w", err)
		}
		s, err := analysis.New(device.ACAnalysis, cfg)
		if err != nil {
			return nil, err
		}
		if err := s.SetFrequency(freq); err != nil {
			return nil, err
		}
		return s, nil

	case "tran":
		spec := d.Analysis.Tran
		if spec == nil {
			return nil, fmt.Errorf("tran analysis without parameters: %w", ErrAnalysis)
		}
		start, stop, err := parsePair(spec.Start, spec.Stop)
		if err != nil {
			return nil, err
		}
		s, err := analysis.New(device.TransientAnalysis, cfg)
		if err != nil {
			return nil, err
		}
		if spec.Points > 0 {
			err = s.SetTimeStepPoints(start, stop, spec.Points, analysis.LINEAR)
		} else {
			var step float64
			step, err = ParseValue(spec.Step)
			if err != nil {
				return nil, fmt.Errorf("tran step: %w", err)
			}
			err = s.SetTimeStep(start, stop, step)
		}
		if err != nil {
			return nil, err
		}
		return s, nil

	case "dc":
		if len(d.Analysis.DC) == 0 {
			return nil, fmt.Errorf("dc sweep without sources: %w", ErrAnalysis)
		}
		var (
			names                     []string
			starts, stops, increments []float64
		)
		for _, spec := range d.Analysis.DC {
			start, stop, err := parsePair(spec.Start, spec.Stop)
			if err != nil {
				return nil, err
			}
			inc, err := ParseValue(spec.Increment)
			if err != nil {
				return nil, fmt.Errorf("dc increment: %w", err)
			}
			names = append(names, spec.Source)
			starts = append(starts, start)
			stops = append(stops, stop)
			increments = append(increments, inc)
		}
		sw, err := analysis.NewDCSweep(names, starts, stops, increments)
		if err != nil {
			return nil, err
		}
		if cfg != nil {
			if err := sw.Configure(cfg); err != nil {
				return nil, err
			}
		}
		return sw, nil
	}

	return nil, fmt.Errorf("analysis type %q: %w", d.Analysis.Type, ErrAnalysis)
}

func parsePair(a, b string) (float64, float64, error) {
	x, err := ParseValue(a)
	if err != nil {
		return 0, 0, err
	}
	y, err := ParseValue(b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
