package consts

const (
	CHARGE    = 1.6021918e-19 // Elementary charge (C)
	BOLTZMANN = 1.3806226e-23 // Boltzmann constant (J/K)
	KELVIN    = 273.15        // Kelvin temperature (K)
)

const (
	CapacitorLeakage = 1.0 / 1e9  // DC admittance of a capacitor (S)
	InductorShort    = 1.0 / 1e-3 // DC admittance of an inductor (S)
	DiodeVdMax       = 0.8        // Diode voltage ceiling while linearizing (V)
)

const (
	Tolerance     = 1e-5 // Default NR relative tolerance
	MaxIterations = 100  // Default NR iteration ceiling
)
