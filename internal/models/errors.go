package models

import "errors"

// Error taxonomy shared by the numeric packages. All errors are raised at
// the point of detection and wrapped with context; the engine never
// substitutes a default value for a failing input.
var (
	// ErrConfiguration marks invalid static parameters such as
	// non-positive dimensions, resolutions or distance thresholds.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInsufficientData marks a sample set with fewer than the minimum
	// number of valid measurements required by an operation.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrAmbiguousSample marks duplicate sample positions carrying
	// conflicting values.
	ErrAmbiguousSample = errors.New("ambiguous duplicate samples")

	// ErrDegenerateInput marks inputs without the variance required by a
	// statistical method.
	ErrDegenerateInput = errors.New("degenerate input")
)
