package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for configuration and tooling. The step function itself never
// fails; these surface at the loading boundary.
var (
	// ErrInvalidConfig indicates a tunable that is negative, NaN or infinite.
	ErrInvalidConfig = errors.New("dynamo: invalid physics config")

	// ErrUnknownPreset indicates a preset name that is not registered.
	ErrUnknownPreset = errors.New("dynamo: unknown preset")

	// ErrUnknownLayout indicates a layout name that is not registered.
	ErrUnknownLayout = errors.New("dynamo: unknown layout")

	// ErrUnknownNode indicates an action referencing a node that is not present.
	ErrUnknownNode = errors.New("dynamo: unknown node")

	// ErrEmptyScenario indicates a scenario without any nodes.
	ErrEmptyScenario = errors.New("dynamo: scenario has no nodes")

	// ErrUnknownWorkspace indicates a snapshot workspace that was never saved.
	ErrUnknownWorkspace = errors.New("dynamo: unknown workspace")
)

// FieldError wraps a validation failure with the offending field.
type FieldError struct {
	Field   string
	Value   float64
	Wrapped error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s = %v", e.Wrapped, e.Field, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Wrapped
}
