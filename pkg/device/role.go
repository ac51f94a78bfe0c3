package device

import "errors"

var (
	ErrNotImplemented = errors.New("device: not implemented for this element")
	ErrWaveform       = errors.New("device: invalid waveform")
)

// Role names a connection point of an element.
type Role int

const (
	Positive Role = iota
	Negative
	Anode
	Cathode
	Inverting
	NonInverting
	Output
	ControlPositive
	ControlNegative
	Reference
)

var roleNames = map[Role]string{
	Positive:        "pos",
	Negative:        "neg",
	Anode:           "anode",
	Cathode:         "cathode",
	Inverting:       "inv",
	NonInverting:    "noninv",
	Output:          "out",
	ControlPositive: "ctrl+",
	ControlNegative: "ctrl-",
	Reference:       "gnd",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRole maps a role name back to its Role.
func ParseRole(name string) (Role, bool) {
	for r, n := range roleNames {
		if n == name {
			return r, true
		}
	}
	return 0, false
}
