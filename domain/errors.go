package domain

import "errors"

var (
	// ErrInvalidParameter marks numeric input outside its domain that cannot be clamped.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDegenerateInput marks a mathematically undefined operation on valid input.
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrNonConvergence marks a root finder that stopped before reaching its tolerance.
	ErrNonConvergence = errors.New("irr did not converge")

	ErrMalformedRequest    = errors.New("malformed request")
	ErrUnsupportedDocument = errors.New("unsupported document type")
	ErrInsufficientText    = errors.New("insufficient text extracted from document")
)
