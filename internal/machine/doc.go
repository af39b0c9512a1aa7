// Package machine implements a single-tape deterministic Turing machine that
// adds two non-negative integers written in unary.
//
// A Machine owns its transition table, tape, head, state and execution log
// for the duration of a run. Nothing is shared between instances, so
// concurrent callers simply construct one Machine each.
//
// The default table (see AdditionTable) works on a tape of the form
// "_ 1^a + 1^b _":
//   - q0 skips the first operand and rewrites the separator as a one
//   - q2 enters the second operand (or backs up straight away when b is 0)
//   - q3 scans to the trailing blank and steps back
//   - q4 erases the last one and halts in q5
//
// Execution is recorded as a slice of Step values. The package never prints;
// formatting a trace is left to callers (see internal/render).
package machine
