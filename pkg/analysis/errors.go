package analysis

import "errors"

var (
	ErrUnsupported      = errors.New("analysis: operation not supported by this analysis")
	ErrNoConvergence    = errors.New("analysis: Newton-Raphson iteration did not converge")
	ErrUnsupportedStep  = errors.New("analysis: time step type not implemented")
	ErrNoTimeGrid       = errors.New("analysis: time range not set")
	ErrNoFrequency      = errors.New("analysis: frequency not set")
	ErrInvalidParameter = errors.New("analysis: invalid parameter")
	ErrNotSolved        = errors.New("analysis: no result yet")
)
