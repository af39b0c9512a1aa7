// Package unary converts between the unary operand strings accepted at the
// request boundary and the integers the machine runs on, and defines the
// JSON request and response documents exchanged with callers.
package unary

import (
	"errors"
	"fmt"
	"strings"

	"github.com/thruflo/turing/internal/machine"
)

// ErrInvalidOperand is matched by errors.Is for any *InputError.
var ErrInvalidOperand = errors.New("invalid operand")

// InputError reports a rejected operand and names the field it came from.
type InputError struct {
	Field  string // "a", "b" or "speed_ms"
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidOperand
}

// TooLargeError is returned when an operand exceeds the caller's size policy.
type TooLargeError struct {
	Field string
	Value int
	Max   int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("operand %s=%d exceeds maximum of %d", e.Field, e.Value, e.Max)
}

// ParseOperand decodes a unary string. The empty string is zero; any
// character other than the unary symbol is rejected.
func ParseOperand(field, s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] != byte(machine.One) {
			return 0, &InputError{
				Field:  field,
				Value:  s,
				Reason: fmt.Sprintf("must be empty or consist only of %q", machine.One.String()),
			}
		}
	}
	return len(s), nil
}

// CheckOperand validates the integer form of an operand.
func CheckOperand(field string, n int) error {
	if n < 0 {
		return &InputError{Field: field, Value: fmt.Sprint(n), Reason: "must be non-negative"}
	}
	return nil
}

// CheckLimit enforces an upper bound on an operand. A max <= 0 disables it.
func CheckLimit(field string, n, max int) error {
	if max > 0 && n > max {
		return &TooLargeError{Field: field, Value: n, Max: max}
	}
	return nil
}

// Encode renders n in unary. Values outside [0, machine.MaxTapeLen] render
// as ""; use EncodeOperand when n comes from a caller.
func Encode(n int) string {
	if n <= 0 || n > machine.MaxTapeLen {
		return ""
	}
	return strings.Repeat(machine.One.String(), n)
}

// EncodeOperand validates n and renders it in unary. Operands that could
// never fit on the machine's tape return a *TooLargeError before any
// string is built.
func EncodeOperand(field string, n int) (string, error) {
	if err := CheckOperand(field, n); err != nil {
		return "", err
	}
	if err := CheckLimit(field, n, machine.MaxTapeLen-3); err != nil {
		return "", err
	}
	return Encode(n), nil
}
