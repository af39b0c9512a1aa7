package machine

import (
	"log/slog"
	"math"
	"strings"
)

// DefaultMaxSteps bounds a run when no limit is configured.
const DefaultMaxSteps = 10000

// MaxTapeLen is the largest initial tape, sentinels included, Initialize
// will build.
const MaxTapeLen = 1 << 30

// Machine is a single-tape Turing machine. A Machine is not safe for
// concurrent use; each run should use its own instance.
type Machine struct {
	table    *Table
	maxSteps int
	logger   *slog.Logger

	tape    *Tape
	initial string
	head    int
	state   State
	steps   int
	trace   []Step
	err     error
}

// Option configures a Machine.
type Option func(*Machine)

// WithTable replaces the addition table.
func WithTable(t *Table) Option {
	return func(m *Machine) {
		if t != nil {
			m.table = t
		}
	}
}

// WithMaxSteps sets the runaway guard used by Run. Values <= 0 keep the default.
func WithMaxSteps(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.maxSteps = n
		}
	}
}

// WithLogger enables debug logging of run boundaries.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = l
	}
}

// New returns a machine using the addition table unless overridden.
func New(opts ...Option) *Machine {
	m := &Machine{
		table:    AdditionTable(),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Table returns the machine's transition table.
func (m *Machine) Table() *Table { return m.table }

// MaxSteps returns the runaway guard.
func (m *Machine) MaxSteps() int { return m.maxSteps }

// Initialize writes "_ 1^a + 1^b _" to a fresh tape, places the head on the
// first cell of the first operand (the separator when a is 0), enters the
// start state and clears the log.
func (m *Machine) Initialize(a, b int) error {
	if a < 0 {
		return &OperandError{Name: "a", Value: a, Err: ErrNegativeOperand}
	}
	if b < 0 {
		return &OperandError{Name: "b", Value: b, Err: ErrNegativeOperand}
	}
	if !fitsTape(a, b) {
		return &OperandError{Name: "a+b", Value: saturatingAdd(a, b), Err: ErrOperandTooLarge}
	}

	m.initial = Encode(a, b)
	m.tape = NewTape(m.initial)
	m.head = 1
	m.state = m.table.Start()
	m.steps = 0
	m.trace = nil
	m.err = nil
	return nil
}

// Step executes one transition and reports whether the machine has reached
// the accepting state. Once halted, Step does nothing and returns true.
// A missing rule returns a *TransitionError; the machine then refuses to
// continue until re-initialized.
func (m *Machine) Step() (bool, error) {
	if m.tape == nil {
		return false, ErrNotInitialized
	}
	if m.err != nil {
		return false, m.err
	}
	if m.Halted() {
		return true, nil
	}

	read := m.tape.Read(m.head)
	rule, ok := m.table.Lookup(m.state, read)
	if !ok {
		m.err = &TransitionError{State: m.state, Read: read, Head: m.head, Step: m.steps}
		return false, m.err
	}

	snapshot, start := m.tape.Snapshot()
	m.tape.Write(m.head, rule.Write)
	next := m.head + rule.Move.Delta()
	m.tape.Extend(next)

	m.steps++
	m.trace = append(m.trace, Step{
		Number:    m.steps,
		State:     m.state,
		Head:      m.head,
		Read:      read,
		Write:     rule.Write,
		Move:      rule.Move,
		Next:      rule.Next,
		NextHead:  next,
		Tape:      snapshot,
		TapeStart: start,
	})
	m.head = next
	m.state = rule.Next

	return m.Halted(), nil
}

// Run initializes the tape with a and b and steps until the machine halts.
// The execution log remains available through Log afterwards.
func (m *Machine) Run(a, b int) (*Result, error) {
	if err := m.Initialize(a, b); err != nil {
		return nil, err
	}
	m.debug("run started", "a", a, "b", b, "tape", m.initial)

	for {
		if m.steps >= m.maxSteps {
			m.err = &RunawayError{Limit: m.maxSteps, State: m.state}
			m.debug("run aborted", "error", m.err)
			return nil, m.err
		}
		halted, err := m.Step()
		if err != nil {
			m.debug("run failed", "error", err)
			return nil, err
		}
		if halted {
			break
		}
	}

	res := &Result{
		Sum:         m.tape.Count(One),
		InitialTape: m.initial,
		FinalTape:   m.tape.String(),
		Steps:       m.steps,
	}
	m.debug("run halted", "sum", res.Sum, "steps", res.Steps, "tape", res.FinalTape)
	return res, nil
}

// Log returns a copy of the execution log.
func (m *Machine) Log() []Step {
	out := make([]Step, len(m.trace))
	copy(out, m.trace)
	return out
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Head returns the current head position.
func (m *Machine) Head() int { return m.head }

// Steps returns the number of transitions executed since Initialize.
func (m *Machine) Steps() int { return m.steps }

// Halted reports whether the machine is in the accepting state.
func (m *Machine) Halted() bool {
	return m.tape != nil && m.state == m.table.Accept()
}

// Err returns the error that stopped the current run, if any.
func (m *Machine) Err() error { return m.err }

// Tape returns the current tape content, blanks trimmed.
func (m *Machine) Tape() string {
	if m.tape == nil {
		return string(Blank)
	}
	return m.tape.String()
}

// Symbol returns the symbol under the head.
func (m *Machine) Symbol() Symbol {
	if m.tape == nil {
		return Blank
	}
	return m.tape.Read(m.head)
}

func (m *Machine) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

// Encode renders two operands as the tape content "1^a+1^b". Operands
// outside [0, MaxTapeLen-3] in total return "".
func Encode(a, b int) string {
	if a < 0 || b < 0 || !fitsTape(a, b) {
		return ""
	}
	return strings.Repeat(string(One), a) + string(Plus) + strings.Repeat(string(One), b)
}

// fitsTape reports whether "_ 1^a + 1^b _" fits in MaxTapeLen cells.
// a and b must be non-negative.
func fitsTape(a, b int) bool {
	const room = MaxTapeLen - 3
	return a <= room && b <= room-a
}

func saturatingAdd(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// Decode returns the number of ones in a tape string.
func Decode(tape string) int {
	return strings.Count(tape, string(One))
}

// Add runs a fresh machine on a and b and returns the decoded sum.
func Add(a, b int, opts ...Option) (int, error) {
	res, err := New(opts...).Run(a, b)
	if err != nil {
		return 0, err
	}
	return res.Sum, nil
}
