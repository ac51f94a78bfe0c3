// Package result stores solved MNA vectors and answers voltage and current
// queries against them.
package result

import (
	"errors"
	"fmt"
	"math"

	"github.com/edp1096/mna-spice/pkg/device"
)

var (
	ErrStep       = errors.New("result: step out of range")
	ErrNoTerminal = errors.New("result: element has no such terminal")
)

// Result is the common face of DC, AC and transient stores.
type Result interface {
	Kind() device.AnalysisMode
	Match(other Result, tol float64) bool
}

// Within is the equality rule used by every comparison: two exact zeros
// match, otherwise |a-b|/|a+b| must be below tol.
func Within(a, b, tol float64) bool {
	if a == 0 && b == 0 {
		return true
	}
	return math.Abs(a-b)/math.Abs(a+b) < tol
}

// WithinComplex applies Within to the real and imaginary parts.
func WithinComplex(a, b complex128, tol float64) bool {
	return Within(real(a), real(b), tol) && Within(imag(a), imag(b), tol)
}

func terminalVoltage(x []complex128, d device.Device, a, b device.Role) (complex128, error) {
	if !d.HasTerminal(a) {
		return 0, fmt.Errorf("%s.%s: %w", d.GetName(), a, ErrNoTerminal)
	}
	if !d.HasTerminal(b) {
		return 0, fmt.Errorf("%s.%s: %w", d.GetName(), b, ErrNoTerminal)
	}
	sol := device.Solution{X: x}
	return sol.Voltage(d.Node(a)) - sol.Voltage(d.Node(b)), nil
}

func toComplex(x []float64) []complex128 {
	out := make([]complex128, len(x))
	for i, v := range x {
		out[i] = complex(v, 0)
	}
	return out
}

func toReal(x []complex128) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = real(v)
	}
	return out
}
