package circuit

import "errors"

var (
	ErrNoGround       = errors.New("circuit: no net is marked ground")
	ErrMultipleGround = errors.New("circuit: more than one net is marked ground")
	ErrUnconnected    = errors.New("circuit: terminal is not connected to any net")
	ErrDuplicatePin   = errors.New("circuit: terminal is connected to more than one net")
	ErrFloating       = errors.New("circuit: net has no path to ground")
	ErrNotFound       = errors.New("circuit: element not found")
	ErrDuplicateName  = errors.New("circuit: duplicate element name")
	ErrEmpty          = errors.New("circuit: no elements")
)
