package machine

import "fmt"

// Symbol is a tape symbol.
type Symbol byte

// Tape alphabet.
const (
	Blank Symbol = '_'
	One   Symbol = '1'
	Plus  Symbol = '+'
)

// Valid reports whether s belongs to the tape alphabet.
func (s Symbol) Valid() bool {
	switch s {
	case Blank, One, Plus:
		return true
	default:
		return false
	}
}

// String returns the symbol as a one-character string.
func (s Symbol) String() string {
	return string(rune(s))
}

// State identifies a machine state.
type State uint8

// Machine states. Q1 is declared but no rule of the addition table reaches it.
const (
	Q0 State = iota
	Q1
	Q2
	Q3
	Q4
	Q5
)

// NumStates is the size of the state set.
const NumStates = int(Q5) + 1

// String returns the conventional name of the state ("q0".."q5").
func (s State) String() string {
	return fmt.Sprintf("q%d", uint8(s))
}

// Valid reports whether s is one of the declared states.
func (s State) Valid() bool {
	return int(s) < NumStates
}

// ParseState converts "q0".."q5" back into a State.
func ParseState(name string) (State, error) {
	var n int
	if _, err := fmt.Sscanf(name, "q%d", &n); err != nil || n < 0 || n >= NumStates || State(n).String() != name {
		return 0, fmt.Errorf("unknown state %q", name)
	}
	return State(n), nil
}

// Direction is a head movement.
type Direction byte

// Head movements.
const (
	Left  Direction = 'L'
	Right Direction = 'R'
	Stay  Direction = 'S'
)

// Valid reports whether d is a known movement.
func (d Direction) Valid() bool {
	switch d {
	case Left, Right, Stay:
		return true
	default:
		return false
	}
}

// Delta returns the change in head position for d.
func (d Direction) Delta() int {
	switch d {
	case Left:
		return -1
	case Right:
		return 1
	default:
		return 0
	}
}

// String returns "L", "R" or "S".
func (d Direction) String() string {
	return string(rune(d))
}

// Key selects a rule: the current state and the symbol under the head.
type Key struct {
	State State
	Read  Symbol
}

// Rule is the action taken for a Key.
type Rule struct {
	Next  State
	Write Symbol
	Move  Direction
}

// Step records one executed transition.
type Step struct {
	Number    int       // 1-based step number
	State     State     // state before the step
	Head      int       // head position the symbol was read from
	Read      Symbol    // symbol under the head
	Write     Symbol    // symbol written
	Move      Direction // direction taken
	Next      State     // state after the step
	NextHead  int       // head position after the move
	Tape      string    // tape content before the write, blanks trimmed
	TapeStart int       // position of Tape's first cell
}

// Result is the outcome of a completed run.
type Result struct {
	Sum         int    // number of ones on the final tape
	InitialTape string // "1^a+1^b"
	FinalTape   string // final tape, blanks trimmed ("_" when empty)
	Steps       int    // transitions executed
}
