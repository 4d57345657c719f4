package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidArgument indicates a value outside its documented domain, such as a non-positive mass.
	ErrInvalidArgument = errors.New("dynamo: invalid argument")

	// ErrPreconditionViolated indicates an operation called in the wrong lifecycle state.
	ErrPreconditionViolated = errors.New("dynamo: precondition violated")

	// ErrCapacityExceeded indicates a fixed-size buffer filled up. Contact generation
	// truncates instead of returning it; callers may use it to report the condition.
	ErrCapacityExceeded = errors.New("dynamo: capacity exceeded")

	// ErrUnstable indicates the simulation became numerically unstable.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrDimensionMismatch indicates mismatched array lengths.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
