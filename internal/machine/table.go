package machine

import (
	"fmt"
	"sort"
)

// Table is an immutable transition table. The zero value has no rules.
type Table struct {
	start  State
	accept State
	rules  map[Key]Rule
}

// Entry pairs a key with its rule, for listing a table.
type Entry struct {
	Key
	Rule
}

// NewTable builds a table from the given rules. The map is copied, so later
// changes to rules do not affect the table.
func NewTable(start, accept State, rules map[Key]Rule) (*Table, error) {
	if !start.Valid() {
		return nil, fmt.Errorf("invalid start state %d", start)
	}
	if !accept.Valid() {
		return nil, fmt.Errorf("invalid accepting state %d", accept)
	}

	copied := make(map[Key]Rule, len(rules))
	for k, r := range rules {
		if !k.State.Valid() || !r.Next.Valid() {
			return nil, fmt.Errorf("rule (%s, %s): state out of range", k.State, k.Read)
		}
		if !k.Read.Valid() || !r.Write.Valid() {
			return nil, fmt.Errorf("rule (%s, %s): symbol outside alphabet", k.State, k.Read)
		}
		if !r.Move.Valid() {
			return nil, fmt.Errorf("rule (%s, %s): unknown direction %q", k.State, k.Read, rune(r.Move))
		}
		if k.State == accept {
			return nil, fmt.Errorf("rule (%s, %s): accepting state has no outgoing transitions", k.State, k.Read)
		}
		copied[k] = r
	}

	return &Table{start: start, accept: accept, rules: copied}, nil
}

// MustTable is like NewTable but panics on error. Intended for fixed tables.
func MustTable(start, accept State, rules map[Key]Rule) *Table {
	t, err := NewTable(start, accept, rules)
	if err != nil {
		panic(err)
	}
	return t
}

var additionRules = map[Key]Rule{
	{Q0, One}:   {Q0, One, Right},
	{Q0, Plus}:  {Q2, One, Right},
	{Q2, One}:   {Q3, One, Right},
	{Q2, Blank}: {Q4, Blank, Left},
	{Q3, One}:   {Q3, One, Right},
	{Q3, Blank}: {Q4, Blank, Left},
	{Q4, One}:   {Q5, Blank, Stay},
}

// AdditionTable returns a fresh copy of the unary addition table.
func AdditionTable() *Table {
	return MustTable(Q0, Q5, additionRules)
}

// Start returns the initial state.
func (t *Table) Start() State { return t.start }

// Accept returns the halting state.
func (t *Table) Accept() State { return t.accept }

// Len returns the number of rules.
func (t *Table) Len() int { return len(t.rules) }

// Lookup returns the rule for state s reading sym.
func (t *Table) Lookup(s State, sym Symbol) (Rule, bool) {
	r, ok := t.rules[Key{State: s, Read: sym}]
	return r, ok
}

// Rules returns all rules ordered by state, then symbol.
func (t *Table) Rules() []Entry {
	entries := make([]Entry, 0, len(t.rules))
	for k, r := range t.rules {
		entries = append(entries, Entry{Key: k, Rule: r})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].State != entries[j].State {
			return entries[i].State < entries[j].State
		}
		return entries[i].Read < entries[j].Read
	})
	return entries
}

// Reachable returns the states reachable from the start state by following
// rules, in ascending order.
func (t *Table) Reachable() []State {
	seen := map[State]bool{t.start: true}
	queue := []State{t.start}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for k, r := range t.rules {
			if k.State == s && !seen[r.Next] {
				seen[r.Next] = true
				queue = append(queue, r.Next)
			}
		}
	}

	states := make([]State, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	return states
}
