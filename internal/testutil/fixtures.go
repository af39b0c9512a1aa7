package testutil

import (
	"fmt"

	"github.com/thruflo/turing/internal/unary"
)

// WorkedExample is one addition with its expected outcome.
type WorkedExample struct {
	A, B        int
	Sum         int
	Steps       int
	InitialTape string
	FinalTape   string
}

// Name labels the example in subtests.
func (e WorkedExample) Name() string {
	return fmt.Sprintf("%d+%d", e.A, e.B)
}

// Request returns the example as a request document.
func (e WorkedExample) Request() unary.Request {
	return unary.Request{A: unary.Encode(e.A), B: unary.Encode(e.B)}
}

// WorkedExamples returns the reference additions. Every run takes
// a+b+3 steps. Returns a new slice each time to prevent test interference.
func WorkedExamples() []WorkedExample {
	return []WorkedExample{
		{A: 3, B: 2, Sum: 5, Steps: 8, InitialTape: "111+11", FinalTape: "11111"},
		{A: 5, B: 1, Sum: 6, Steps: 9, InitialTape: "11111+1", FinalTape: "111111"},
		{A: 1, B: 1, Sum: 2, Steps: 5, InitialTape: "1+1", FinalTape: "11"},
		{A: 4, B: 4, Sum: 8, Steps: 11, InitialTape: "1111+1111", FinalTape: "11111111"},
		{A: 0, B: 5, Sum: 5, Steps: 8, InitialTape: "+11111", FinalTape: "11111"},
		{A: 2, B: 0, Sum: 2, Steps: 5, InitialTape: "11+", FinalTape: "11"},
		{A: 0, B: 0, Sum: 0, Steps: 3, InitialTape: "+", FinalTape: "_"},
	}
}

// SampleConfig sets every config section to a non-default value.
const SampleConfig = `engine:
  max_steps: 500
limits:
  max_operand: 12
server:
  port: 9100
  mode: process
  process_timeout: 3s
  rate_limit:
    max_requests: 5
    window: 30s
log:
  level: debug
`
