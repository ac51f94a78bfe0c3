package device

import (
	"github.com/edp1096/mna-spice/pkg/matrix"
)

// Device is the stamping contract every circuit element implements. The
// three Stamp methods add the element's contribution for one analysis mode
// into m; they never overwrite a cell.
type Device interface {
	GetName() string
	GetType() Denomination
	Terminals() []Role
	HasTerminal(role Role) bool
	Node(role Role) int
	SetNode(role Role, idx int)
	Current(sol Solution) (complex128, error)

	StampDC(m matrix.DeviceMatrix, status *CircuitStatus)
	StampAC(m matrix.DeviceMatrix, status *CircuitStatus)
	StampTransient(m matrix.DeviceMatrix, status *CircuitStatus)
}

// BranchDevice is a Device that owns a branch-current unknown.
type BranchDevice interface {
	Device
	Branch() int
	SetBranch(k int)
}

// NonLinear marks devices whose stamps depend on the solution estimate.
type NonLinear interface {
	Device
	NonLinear() bool
}

type Denomination string

const (
	DenomResistor  Denomination = "R"
	DenomCapacitor Denomination = "C"
	DenomInductor  Denomination = "L"
	DenomVoltage   Denomination = "V"
	DenomCurrent   Denomination = "I"
	DenomVCVS      Denomination = "E"
	DenomCCVS      Denomination = "H"
	DenomOpAmp     Denomination = "U"
	DenomDiode     Denomination = "D"
	DenomGround    Denomination = "GND"
)

type AnalysisMode int

const (
	OperatingPointAnalysis AnalysisMode = iota
	ACAnalysis
	TransientAnalysis
)

func (m AnalysisMode) String() string {
	switch m {
	case OperatingPointAnalysis:
		return "op"
	case ACAnalysis:
		return "ac"
	case TransientAnalysis:
		return "tran"
	default:
		return "unknown"
	}
}

// Solution is a full solved vector: node voltages with ground at index 0,
// followed by branch currents.
type Solution struct {
	X     []complex128
	Nodes int
}

// Voltage returns the voltage of node, or 0 when no estimate exists yet.
func (s Solution) Voltage(node int) complex128 {
	if node <= 0 || node >= len(s.X) {
		return 0
	}
	return s.X[node]
}

func (s Solution) BranchCurrent(k int) complex128 {
	i := s.Nodes + k
	if k < 0 || i >= len(s.X) {
		return 0
	}
	return s.X[i]
}

// CircuitStatus carries everything a stamp may depend on besides the
// element's own parameters.
type CircuitStatus struct {
	Solution
	Mode      AnalysisMode
	Branch    int     // branch unknown of the element being stamped, -1 if none
	Frequency float64 // AC, Hz
	Time      float64 // transient, s
	TimeStep  float64 // transient, s
}

type BaseDevice struct {
	Name  string
	Value float64
	roles []Role
	nodes map[Role]int
}

func NewBaseDevice(name string, value float64, roles ...Role) BaseDevice {
	nodes := make(map[Role]int, len(roles))
	for _, r := range roles {
		nodes[r] = 0
	}
	return BaseDevice{
		Name:  name,
		Value: value,
		roles: roles,
		nodes: nodes,
	}
}

func (d *BaseDevice) GetName() string { return d.Name }

func (d *BaseDevice) GetValue() float64 { return d.Value }

func (d *BaseDevice) SetValue(value float64) { d.Value = value }

func (d *BaseDevice) Terminals() []Role {
	roles := make([]Role, len(d.roles))
	copy(roles, d.roles)
	return roles
}

func (d *BaseDevice) HasTerminal(role Role) bool {
	_, ok := d.nodes[role]
	return ok
}

func (d *BaseDevice) Node(role Role) int {
	return d.nodes[role]
}

// SetNode ignores roles the device does not have.
func (d *BaseDevice) SetNode(role Role, idx int) {
	if _, ok := d.nodes[role]; ok {
		d.nodes[role] = idx
	}
}

func (d *BaseDevice) Current(Solution) (complex128, error) {
	return 0, ErrNotImplemented
}

// voltageAcross is v(a) - v(b) in the given solution.
func (d *BaseDevice) voltageAcross(sol Solution, a, b Role) complex128 {
	return sol.Voltage(d.Node(a)) - sol.Voltage(d.Node(b))
}

// stampAdmittance adds y between nodes a and b.
func stampAdmittance(m matrix.DeviceMatrix, a, b int, y complex128) {
	m.AddG(a, a, y)
	m.AddG(b, b, y)
	m.AddG(a, b, -y)
	m.AddG(b, a, -y)
}

// stampCurrent drives i into node a and out of node b.
func stampCurrent(m matrix.DeviceMatrix, a, b int, i complex128) {
	m.AddRHS(a, i)
	m.AddRHS(b, -i)
}

// Connectivity is implemented by devices whose terminals are not all joined
// by a conductive or voltage-defining path. Each group lists terminals tied
// together; Reference in a group stands for the ground net. Devices without
// it tie all their terminals together.
type Connectivity interface {
	ConductivePaths() [][]Role
}
