package env

import "errors"

// Contract errors. Malformed actions are rejected at the boundary,
// never coerced.
var (
	// ErrBadAction indicates an action whose shape or values violate
	// the action contract.
	ErrBadAction = errors.New("env: action violates the action contract")

	// ErrNotReset indicates Step was called before the first Reset.
	ErrNotReset = errors.New("env: step before reset")
)
