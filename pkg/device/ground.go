package device

import (
	"github.com/edp1096/mna-spice/pkg/matrix"
)

// Ground anchors the reference net. It stamps nothing.
type Ground struct {
	BaseDevice
}

var _ Device = (*Ground)(nil)

func NewGround(name string) *Ground {
	return &Ground{BaseDevice: NewBaseDevice(name, 0, Reference)}
}

func (g *Ground) GetType() Denomination { return DenomGround }

func (g *Ground) StampDC(matrix.DeviceMatrix, *CircuitStatus)        {}
func (g *Ground) StampAC(matrix.DeviceMatrix, *CircuitStatus)        {}
func (g *Ground) StampTransient(matrix.DeviceMatrix, *CircuitStatus) {}
