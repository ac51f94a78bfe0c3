package circuit

import (
	"github.com/edp1096/mna-spice/pkg/device"
)

// Pin is one terminal of one element.
type Pin struct {
	Device device.Device
	Role   device.Role
}

// Net is a set of terminals that share one node. Exactly one net of a
// circuit is the ground net.
type Net struct {
	Name    string
	Members []Pin
	Ground  bool
}

func NewNet(name string) *Net {
	return &Net{Name: name}
}

func NewGroundNet(name string) *Net {
	return &Net{Name: name, Ground: true}
}

// Connect adds a terminal to the net and returns the net for chaining.
func (n *Net) Connect(d device.Device, role device.Role) *Net {
	n.Members = append(n.Members, Pin{Device: d, Role: role})
	return n
}

func (n *Net) remove(d device.Device) {
	kept := n.Members[:0]
	for _, p := range n.Members {
		if p.Device != d {
			kept = append(kept, p)
		}
	}
	n.Members = kept
}
