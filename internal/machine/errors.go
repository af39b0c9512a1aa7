package machine

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeOperand is returned when an operand is below zero.
	ErrNegativeOperand = errors.New("operand must be non-negative")

	// ErrOperandTooLarge is returned when the operands do not fit on a tape
	// of MaxTapeLen cells.
	ErrOperandTooLarge = errors.New("operands too large for the tape")

	// ErrNotInitialized is returned by Step before Initialize has been called.
	ErrNotInitialized = errors.New("machine not initialized")

	// ErrUndefinedTransition is matched by errors.Is for any *TransitionError.
	ErrUndefinedTransition = errors.New("undefined transition")

	// ErrStepLimit is matched by errors.Is for any *RunawayError.
	ErrStepLimit = errors.New("step limit exceeded")
)

// OperandError reports which operand was rejected and why.
type OperandError struct {
	Name  string // "a", "b" or "a+b"
	Value int
	Err   error // ErrNegativeOperand or ErrOperandTooLarge
}

func (e *OperandError) Error() string {
	return fmt.Sprintf("invalid operand %s=%d: %v", e.Name, e.Value, e.Err)
}

func (e *OperandError) Unwrap() error {
	return e.Err
}

// TransitionError is returned when the table has no rule for the observed
// state and symbol. The run stops; it is never reported as a halt.
type TransitionError struct {
	State State
	Read  Symbol
	Head  int
	Step  int // steps completed before the failure
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("undefined transition for (%s, %s) at head %d after %d steps",
		e.State, e.Read, e.Head, e.Step)
}

func (e *TransitionError) Unwrap() error {
	return ErrUndefinedTransition
}

// RunawayError is returned when a run does not reach the accepting state
// within the configured number of steps.
type RunawayError struct {
	Limit int
	State State
}

func (e *RunawayError) Error() string {
	return fmt.Sprintf("no halt after %d steps (state %s): %v", e.Limit, e.State, ErrStepLimit)
}

func (e *RunawayError) Unwrap() error {
	return ErrStepLimit
}
