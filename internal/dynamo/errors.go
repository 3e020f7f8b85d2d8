package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for scenario and engine operations.
var (
	// ErrInvalidScenario indicates a descriptor that cannot produce a scenario.
	ErrInvalidScenario = errors.New("dynamo: invalid scenario")

	// ErrUnknownMode indicates a scenarioType outside the supported set.
	ErrUnknownMode = errors.New("dynamo: unknown scenario mode")

	// ErrInvalidBody indicates a body with non-positive mass or radius or a
	// non-finite vector component.
	ErrInvalidBody = errors.New("dynamo: invalid body parameters")

	// ErrNotTriggerable indicates the active scenario has no scripted action.
	ErrNotTriggerable = errors.New("dynamo: scenario has no trigger")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")
)

// ScenarioError pinpoints the descriptor object that failed validation.
type ScenarioError struct {
	Index   int
	Field   string
	Wrapped error
}

func (e *ScenarioError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Field, e.Wrapped)
	}
	return fmt.Sprintf("objects[%d].%s: %v", e.Index, e.Field, e.Wrapped)
}

func (e *ScenarioError) Unwrap() error {
	return e.Wrapped
}
