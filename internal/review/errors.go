package review

import "errors"

var (
	// ErrNoSession indicates no review session is open for the plan.
	ErrNoSession = errors.New("review session not open for plan")

	// ErrInvalidInput indicates a rejected mutation argument.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRiskOutOfRange indicates a risk index outside the plan's safety analysis.
	ErrRiskOutOfRange = errors.New("risk index out of range")

	// ErrUnknownRole indicates a signature role other than executor or supervisor.
	ErrUnknownRole = errors.New("unknown signature role")
)
