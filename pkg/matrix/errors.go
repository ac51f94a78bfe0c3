package matrix

import "errors"

var (
	ErrSingular      = errors.New("matrix: singular system")
	ErrDimension     = errors.New("matrix: dimension mismatch")
	ErrUnknownSolver = errors.New("matrix: unknown solver backend")
	ErrIndex         = errors.New("matrix: stamp index out of range")
)
