package unary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/thruflo/turing/internal/machine"
)

// Request is the structured input accepted from callers.
type Request struct {
	A       string `json:"a"`
	B       string `json:"b"`
	SpeedMS *int   `json:"speed_ms,omitempty"`
}

// Transition is one entry of the execution trace.
type Transition struct {
	State        string `json:"state"`
	Head         int    `json:"head"`
	Read         string `json:"read"`
	Write        string `json:"write"`
	Direction    string `json:"direction"`
	TapeSnapshot string `json:"tape_snapshot"`
	// TapeOffset is how far left (negative) or right of position 1 the
	// snapshot's first cell lies. The addition table always reports 0.
	TapeOffset int `json:"tape_offset,omitempty"`
}

// Response is the structured result of a successful simulation.
type Response struct {
	InitialTape string       `json:"initial_tape"`
	Transitions []Transition `json:"transitions"`
	FinalTape   string       `json:"final_tape"`
	Steps       int          `json:"steps"`
}

// ErrorResponse is the structured result of a failed simulation.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Operands validates the request and returns the decoded integers.
func (r Request) Operands() (a, b int, err error) {
	if a, err = ParseOperand("a", r.A); err != nil {
		return 0, 0, err
	}
	if b, err = ParseOperand("b", r.B); err != nil {
		return 0, 0, err
	}
	if r.SpeedMS != nil && *r.SpeedMS < 0 {
		return 0, 0, &InputError{Field: "speed_ms", Value: fmt.Sprint(*r.SpeedMS), Reason: "must be non-negative"}
	}
	return a, b, nil
}

// Speed returns speed_ms, or 0 when absent.
func (r Request) Speed() int {
	if r.SpeedMS == nil {
		return 0
	}
	return *r.SpeedMS
}

// Sum decodes the final tape.
func (r *Response) Sum() int {
	return machine.Decode(r.FinalTape)
}

// NewResponse converts a completed run into its wire form.
func NewResponse(res *machine.Result, log []machine.Step) *Response {
	transitions := make([]Transition, len(log))
	for i, s := range log {
		transitions[i] = Transition{
			State:        s.State.String(),
			Head:         s.Head,
			Read:         s.Read.String(),
			Write:        s.Write.String(),
			Direction:    s.Move.String(),
			TapeSnapshot: s.Tape,
			TapeOffset:   s.TapeStart - 1,
		}
	}
	return &Response{
		InitialTape: res.InitialTape,
		Transitions: transitions,
		FinalTape:   res.FinalTape,
		Steps:       res.Steps,
	}
}

// Exit statuses of the simulate command, so a parent process can tell
// rejected input from a failed run.
const (
	ExitFailure  = 1
	ExitInput    = 2
	ExitTooLarge = 3
)

// ExitCode returns the simulate command's exit status for err.
func ExitCode(err error) int {
	var tooLarge *TooLargeError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidOperand):
		return ExitInput
	case errors.As(err, &tooLarge), errors.Is(err, machine.ErrOperandTooLarge):
		return ExitTooLarge
	default:
		return ExitFailure
	}
}

// Simulator runs a request to completion.
type Simulator interface {
	Simulate(ctx context.Context, req Request) (*Response, error)
}

// Local runs requests on an in-process machine. Each call builds its own
// machine, so a Local may be shared between goroutines.
type Local struct {
	MaxOperand int // 0 disables the size policy
	MaxSteps   int // 0 uses machine.DefaultMaxSteps
	Table      *machine.Table
	Logger     *slog.Logger
}

// Simulate validates req, runs the machine and returns its trace.
func (l *Local) Simulate(ctx context.Context, req Request) (*Response, error) {
	a, b, err := req.Operands()
	if err != nil {
		return nil, err
	}
	if err := CheckLimit("a", a, l.MaxOperand); err != nil {
		return nil, err
	}
	if err := CheckLimit("b", b, l.MaxOperand); err != nil {
		return nil, err
	}
	if l.Table == nil {
		// The addition table visits every input cell, so a longer input
		// cannot halt within the step limit.
		if err := CheckLimit("a+b", a+b, l.maxSteps()); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := []machine.Option{machine.WithMaxSteps(l.maxSteps()), machine.WithTable(l.Table)}
	if l.Logger != nil {
		opts = append(opts, machine.WithLogger(l.Logger))
	}
	m := machine.New(opts...)

	res, err := m.Run(a, b)
	if err != nil {
		return nil, err
	}
	return NewResponse(res, m.Log()), nil
}

// OperandLimit returns the largest operand Simulate can accept: MaxOperand
// when set, and never more than the step limit for the addition table.
func (l *Local) OperandLimit() int {
	limit := l.MaxOperand
	if l.Table == nil && (limit <= 0 || limit > l.maxSteps()) {
		limit = l.maxSteps()
	}
	return limit
}

func (l *Local) maxSteps() int {
	if l.MaxSteps > 0 {
		return l.MaxSteps
	}
	return machine.DefaultMaxSteps
}

// DecodeRequest reads one JSON request document.
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Request{}, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// WriteJSON encodes v followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// WriteError encodes err as an ErrorResponse.
func WriteError(w io.Writer, err error) error {
	return WriteJSON(w, ErrorResponse{Error: err.Error()})
}
