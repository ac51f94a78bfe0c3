package circuit

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/edp1096/mna-spice/pkg/device"
)

// Circuit is the topology an analysis solves: elements plus the nets that
// connect their terminals.
type Circuit struct {
	name     string
	devices  []device.Device
	nets     []*Net
	numNodes int
	branches []device.BranchDevice
}

func New(name string) *Circuit {
	return &Circuit{name: name}
}

// FromTopology builds a circuit from an explicit element and net list.
func FromTopology(name string, devices []device.Device, nets []*Net) *Circuit {
	c := New(name)
	c.AddElements(devices)
	c.AddWires(nets)
	return c
}

func (c *Circuit) Name() string { return c.name }

func (c *Circuit) AddElement(d device.Device) {
	c.devices = append(c.devices, d)
}

func (c *Circuit) AddElements(devices []device.Device) {
	for _, d := range devices {
		c.AddElement(d)
	}
}

// RemoveElement drops the element named id and disconnects it from every
// net.
func (c *Circuit) RemoveElement(id string) error {
	for i, d := range c.devices {
		if d.GetName() != id {
			continue
		}
		c.devices = append(c.devices[:i], c.devices[i+1:]...)
		for _, n := range c.nets {
			n.remove(d)
		}
		if b, ok := d.(device.BranchDevice); ok {
			b.SetBranch(-1)
		}
		return nil
	}
	return fmt.Errorf("%s: %w", id, ErrNotFound)
}

func (c *Circuit) AddWire(n *Net) {
	c.nets = append(c.nets, n)
}

func (c *Circuit) AddWires(nets []*Net) {
	for _, n := range nets {
		c.AddWire(n)
	}
}

func (c *Circuit) GetDevices() []device.Device { return c.devices }
func (c *Circuit) GetNets() []*Net             { return c.nets }

// GetDevice looks an element up by name.
func (c *Circuit) GetDevice(id string) (device.Device, error) {
	for _, d := range c.devices {
		if d.GetName() == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
}

// NumNodes counts every node including ground. Valid after Setup.
func (c *Circuit) NumNodes() int { return c.numNodes }

// NumBranches counts branch-current unknowns. Valid after Setup.
func (c *Circuit) NumBranches() int { return len(c.branches) }

func (c *Circuit) GetBranches() []device.BranchDevice { return c.branches }

// BranchOf returns the branch number of d, or -1 when d owns none.
func (c *Circuit) BranchOf(d device.Device) int {
	if b, ok := d.(device.BranchDevice); ok {
		return b.Branch()
	}
	return -1
}

// IsNonLinear reports whether any element's stamp depends on the solution.
func (c *Circuit) IsNonLinear() bool {
	for _, d := range c.devices {
		if nl, ok := d.(device.NonLinear); ok && nl.NonLinear() {
			return true
		}
	}
	return false
}

// GetNodeMap maps net names to node indices. Valid after Setup.
func (c *Circuit) GetNodeMap() map[string]int {
	nodeMap := make(map[string]int, len(c.nets))
	for i, n := range c.nets {
		name := n.Name
		if name == "" {
			name = fmt.Sprintf("net%d", i)
		}
		if n.Ground {
			nodeMap[name] = 0
			continue
		}
		if len(n.Members) > 0 {
			p := n.Members[0]
			nodeMap[name] = p.Device.Node(p.Role)
		}
	}
	return nodeMap
}

// Setup validates the topology, numbers the nodes and assigns branch
// unknowns. It must run before every solve because the topology may have
// changed in between.
func (c *Circuit) Setup() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.numNodes = NumberNodes(c.nets)
	c.assignBranches()
	return nil
}

// NumberNodes walks nets in order and writes the next index, starting at 1,
// into every terminal of each non-ground net. Ground nets are numbered last
// and receive 0. It returns the node count including ground.
func NumberNodes(nets []*Net) int {
	idx := 1
	for _, n := range nets {
		if n.Ground {
			continue
		}
		for _, p := range n.Members {
			p.Device.SetNode(p.Role, idx)
		}
		idx++
	}

	for _, n := range nets {
		if !n.Ground {
			continue
		}
		for _, p := range n.Members {
			p.Device.SetNode(p.Role, 0)
		}
	}

	return idx
}

func (c *Circuit) assignBranches() {
	c.branches = c.branches[:0]
	for _, d := range c.devices {
		if b, ok := d.(device.BranchDevice); ok {
			b.SetBranch(len(c.branches))
			c.branches = append(c.branches, b)
		}
	}
}

// Validate rejects topologies that would give a singular or ground-unmapped
// system.
func (c *Circuit) Validate() error {
	if len(c.devices) == 0 {
		return ErrEmpty
	}

	names := make(map[string]bool, len(c.devices))
	owned := make(map[device.Device]bool, len(c.devices))
	for _, d := range c.devices {
		if names[d.GetName()] {
			return fmt.Errorf("%s: %w", d.GetName(), ErrDuplicateName)
		}
		names[d.GetName()] = true
		owned[d] = true
	}

	ground := -1
	for i, n := range c.nets {
		if !n.Ground {
			continue
		}
		if ground >= 0 {
			return fmt.Errorf("%s and %s: %w", c.netName(ground), c.netName(i), ErrMultipleGround)
		}
		ground = i
	}
	if ground < 0 {
		return ErrNoGround
	}

	pinNet := make(map[Pin]int)
	for i, n := range c.nets {
		for _, p := range n.Members {
			if !owned[p.Device] {
				return fmt.Errorf("net %s references %s: %w", c.netName(i), p.Device.GetName(), ErrNotFound)
			}
			if j, ok := pinNet[p]; ok && j != i {
				return fmt.Errorf("%s.%s on %s and %s: %w", p.Device.GetName(), p.Role, c.netName(j), c.netName(i), ErrDuplicatePin)
			}
			pinNet[p] = i
		}
	}

	for _, d := range c.devices {
		for _, r := range d.Terminals() {
			if _, ok := pinNet[Pin{Device: d, Role: r}]; !ok {
				return fmt.Errorf("%s.%s: %w", d.GetName(), r, ErrUnconnected)
			}
		}
		if h, ok := d.(*device.CCVS); ok {
			ctrl := h.Control()
			if ctrl == nil || !owned[ctrl] {
				return fmt.Errorf("%s controlled by %s: %w", h.GetName(), controlName(ctrl), ErrNotFound)
			}
		}
	}

	return c.checkFloating(pinNet, ground)
}

// checkFloating builds a graph with one node per net and an edge for every
// element path between two nets, then requires every net to share the
// ground net's connected component.
func (c *Circuit) checkFloating(pinNet map[Pin]int, ground int) error {
	g := simple.NewUndirectedGraph()
	for i := range c.nets {
		g.AddNode(simple.Node(i))
	}

	for _, d := range c.devices {
		for _, group := range conductivePaths(d) {
			first := -1
			for _, r := range group {
				net := ground
				if d.HasTerminal(r) {
					net = pinNet[Pin{Device: d, Role: r}]
				} else if r != device.Reference {
					continue
				}
				if first < 0 {
					first = net
					continue
				}
				if net != first {
					g.SetEdge(g.NewEdge(simple.Node(first), simple.Node(net)))
				}
			}
		}
	}

	grounded := make(map[int64]bool, len(c.nets))
	for _, comp := range topo.ConnectedComponents(g) {
		for _, n := range comp {
			if n.ID() == int64(ground) {
				for _, m := range comp {
					grounded[m.ID()] = true
				}
				break
			}
		}
	}

	var floating []string
	for i := range c.nets {
		if !grounded[int64(i)] {
			floating = append(floating, c.netName(i))
		}
	}
	if len(floating) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(floating, ", "), ErrFloating)
	}
	return nil
}

func controlName(d device.Device) string {
	if d == nil {
		return "<nil>"
	}
	return d.GetName()
}

func conductivePaths(d device.Device) [][]device.Role {
	if cp, ok := d.(device.Connectivity); ok {
		return cp.ConductivePaths()
	}
	return [][]device.Role{d.Terminals()}
}

func (c *Circuit) netName(i int) string {
	if c.nets[i].Name != "" {
		return c.nets[i].Name
	}
	return fmt.Sprintf("net%d", i)
}
