package ginko

import "errors"

// Sentinel errors for the whole SDK. Callers branch with errors.Is; every
// wrapped message carries the identifier or account it concerns.
var (
	// ErrValidation marks caller-supplied parameters that violate a protocol
	// invariant. Raised before any network access, never retried.
	ErrValidation = errors.New("invalid parameter")

	// ErrEncoding marks a nonce or fixed-width field overflow.
	ErrEncoding = errors.New("encoding failed")

	// ErrParse marks malformed numeric/decimal input.
	ErrParse = errors.New("parse failed")

	// ErrNotFound marks an external identifier with no resolvable mapping.
	ErrNotFound = errors.New("not found")

	// ErrService marks a non-success response or explicit error payload from
	// an external HTTP dependency.
	ErrService = errors.New("service error")

	// ErrChainRead marks an account fetch or decode failure.
	ErrChainRead = errors.New("chain read failed")

	// ErrBuild marks an external client that could not produce an instruction.
	ErrBuild = errors.New("instruction build failed")
)
