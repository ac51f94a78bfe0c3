package util

import (
	"fmt"
	"math"
	"math/cmplx"
)

type factor struct {
	scale  float64
	prefix string
}

// Engineering prefixes, largest first. Same spelling as netlist values.
var factors = []factor{
	{1e9, "G"},
	{1e6, "meg"},
	{1e3, "k"},
	{1, ""},
	{1e-3, "m"},
	{1e-6, "u"},
	{1e-9, "n"},
	{1e-12, "p"},
}

// FormatValueFactor prints value with the largest prefix that keeps the
// mantissa at or above 1. 0.05 A -> "50.000 mA".
func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	if absValue == 0 {
		return fmt.Sprintf("0.000 %s", unit)
	}
	for _, f := range factors {
		if absValue >= f.scale {
			return fmt.Sprintf("%.3f %s%s", value/f.scale, f.prefix, unit)
		}
	}
	return fmt.Sprintf("%.3e %s", value, unit)
}

func FormatFrequency(freq float64) string {
	switch {
	case freq >= 1e6:
		return fmt.Sprintf("%7.3f MHz", freq/1e6)
	case freq >= 1e3:
		return fmt.Sprintf("%7.3f kHz", freq/1e3)
	default:
		return fmt.Sprintf("%7.3f Hz ", freq)
	}
}

// FormatPhasor prints a solution entry as name=magnitude<phase in degrees.
func FormatPhasor(name string, v complex128) string {
	mag := cmplx.Abs(v)
	phase := cmplx.Phase(v) * 180 / math.Pi

	var magStr string
	if mag >= 1000 || (mag < 0.001 && mag != 0) {
		magStr = fmt.Sprintf("%8.2e", mag) // e.g., "5.43e-05"
	} else {
		magStr = fmt.Sprintf("%8.3g", mag) // e.g., "     732"
	}
	return fmt.Sprintf("%s=%s<%6.1fdeg", name, magStr, phase)
}
