package sov

import (
	"errors"
)

var (
	// ErrInvalidConfiguration indicates a WeightConfig or analysis
	// configuration that cannot produce meaningful scores. Configuration
	// errors abort a run before any aggregation begins.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidInput indicates a malformed PlatformItem field, such as a
	// rank below 1.
	ErrInvalidInput = errors.New("invalid input")
)
