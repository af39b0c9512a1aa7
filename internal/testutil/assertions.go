package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/turing/internal/unary"
)

// AssertTrace checks the properties every successful trace has: one
// transition per step, a first step in q0 at position 1, and a last step
// that erases a 1 in q4 without moving.
func AssertTrace(t *testing.T, resp *unary.Response) {
	t.Helper()
	require.NotNil(t, resp, "response is nil")
	require.Len(t, resp.Transitions, resp.Steps, "steps must equal the number of transitions")
	require.NotEmpty(t, resp.Transitions)

	first := resp.Transitions[0]
	assert.Equal(t, "q0", first.State, "first transition state")
	assert.Equal(t, 1, first.Head, "first transition head")
	assert.Equal(t, resp.InitialTape, first.TapeSnapshot, "first snapshot is the initial tape")

	last := resp.Transitions[len(resp.Transitions)-1]
	assert.Equal(t, unary.Transition{
		State:        "q4",
		Head:         last.Head,
		Read:         "1",
		Write:        "_",
		Direction:    "S",
		TapeSnapshot: last.TapeSnapshot,
	}, last, "last transition")

	for i, tr := range resp.Transitions {
		assert.NotEqual(t, "q5", tr.State, "transition %d starts in the accepting state", i)
	}
}

// AssertWorkedExample checks resp against a worked example.
func AssertWorkedExample(t *testing.T, ex WorkedExample, resp *unary.Response) {
	t.Helper()
	AssertTrace(t, resp)
	assert.Equal(t, ex.InitialTape, resp.InitialTape, "initial tape")
	assert.Equal(t, ex.FinalTape, resp.FinalTape, "final tape")
	assert.Equal(t, ex.Steps, resp.Steps, "steps")
	assert.Equal(t, ex.Sum, resp.Sum(), "sum")
}
