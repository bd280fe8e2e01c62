package domain

import "fmt"

// InvalidTransitionError reports a workflow operation attempted from a state
// it is not legal in. It carries the current state and the attempted
// operation for diagnostics.
type InvalidTransitionError struct {
	Entity    string
	ID        string
	Status    string
	Operation string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s %s %s: status is %s", e.Operation, e.Entity, e.ID, e.Status)
}

// ValidationError reports a missing or malformed required field, raised
// before any state machine is consulted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
