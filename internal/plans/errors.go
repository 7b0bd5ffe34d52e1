package plans

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates the plan is neither current nor in history.
	ErrNotFound = errors.New("plan not found")

	// ErrInvalidDocument indicates a value failed the structural plan check.
	ErrInvalidDocument = errors.New("invalid plan document")

	// ErrGenerationFailed is the single user-facing generation failure.
	ErrGenerationFailed = errors.New("failed to generate the maintenance document")

	// ErrBusy indicates a generation is already in flight.
	ErrBusy = errors.New("a generation is already in progress")
)

// GeneralValidationMessage is shown above the form when any required field is missing.
const GeneralValidationMessage = "Missing data: fill in all required fields."

// ValidationError reports missing form fields before generation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}
