package util

import (
	"math"
	"testing"
)

func TestGetBDFcoeffs(t *testing.T) {
	tests := []struct {
		order int
		dt    float64
		want  []float64
	}{
		{1, 1e-3, []float64{1e3, -1e3}},
		{2, 1.0, []float64{1.5, -2, 0.5}},
		{0, 0.5, []float64{2, -2}},
		{9, 0.5, []float64{2, -2}},
	}

	for _, tt := range tests {
		got := GetBDFcoeffs(tt.order, tt.dt)
		if len(got) != len(tt.want) {
			t.Fatalf("order %d: len = %d, want %d", tt.order, len(got), len(tt.want))
		}
		for i := range got {
			if math.Abs(got[i]-tt.want[i]) > 1e-9 {
				t.Errorf("order %d: c[%d] = %g, want %g", tt.order, i, got[i], tt.want[i])
			}
		}
	}
}

// Every BDF formula differentiates a constant to zero.
func TestBDFConsistency(t *testing.T) {
	for order := 1; order <= MaxBDFOrder; order++ {
		sum := 0.0
		for _, c := range GetBDFcoeffs(order, 0.1) {
			sum += c
		}
		if math.Abs(sum) > 1e-9 {
			t.Errorf("order %d: coefficients sum to %g", order, sum)
		}
	}
}
