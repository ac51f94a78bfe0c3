package netlist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"M":   1e-3,  // milli, as in SPICE
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGMKkmunpf])?s?$`)

// ParseValue - Parse value and factor. 1k -> 1000
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format %q: %w", val, ErrValue)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", val, ErrValue)
	}

	// factor
	if matches[2] != "" {
		num *= unitMap[matches[2]]
	}

	return num, nil
}

// parseValues parses a whitespace separated list of values.
func parseValues(params string) ([]float64, error) {
	fields := strings.Fields(params)
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := ParseValue(f)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// parseSinParams reads "offset amplitude freq [phase]".
func parseSinParams(params string) (offset, amplitude, freq, phase float64, err error) {
	vals, err := parseValues(params)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid SIN parameters: %w", err)
	}
	if len(vals) < 3 {
		return 0, 0, 0, 0, fmt.Errorf("insufficient SIN parameters: %w", ErrValue)
	}
	if len(vals) > 3 {
		phase = vals[3]
	}
	return vals[0], vals[1], vals[2], phase, nil
}

// parsePulseParams reads "v1 v2 delay rise fall width period".
func parsePulseParams(params string) (v1, v2, delay, rise, fall, pWidth, period float64, err error) {
	vals, err := parseValues(params)
	if err != nil {
		return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("invalid PULSE parameters: %w", err)
	}
	if len(vals) < 7 {
		return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("insufficient PULSE parameters: %w", ErrValue)
	}
	return vals[0], vals[1], vals[2], vals[3], vals[4], vals[5], vals[6], nil
}

// parsePWLParams reads time/value pairs with strictly increasing times.
func parsePWLParams(params string) (times []float64, values []float64, err error) {
	vals, err := parseValues(params)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid PWL parameters: %w", err)
	}
	if len(vals) < 4 || len(vals)%2 != 0 {
		return nil, nil, fmt.Errorf("PWL needs pairs of time-value: %w", ErrValue)
	}

	numPoints := len(vals) / 2
	times = make([]float64, numPoints)
	values = make([]float64, numPoints)
	for i := 0; i < numPoints; i++ {
		times[i] = vals[2*i]
		values[i] = vals[2*i+1]
		if i > 0 && times[i] <= times[i-1] {
			return nil, nil, fmt.Errorf("PWL time points must be strictly increasing: %w", ErrValue)
		}
	}

	return times, values, nil
}
