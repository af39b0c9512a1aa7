package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdditionTable(t *testing.T) {
	t.Parallel()

	table := AdditionTable()
	assert.Equal(t, Q0, table.Start())
	assert.Equal(t, Q5, table.Accept())
	assert.Equal(t, 7, table.Len())

	rule, ok := table.Lookup(Q0, Plus)
	require.True(t, ok)
	assert.Equal(t, Rule{Next: Q2, Write: One, Move: Right}, rule)

	rule, ok = table.Lookup(Q4, One)
	require.True(t, ok)
	assert.Equal(t, Rule{Next: Q5, Write: Blank, Move: Stay}, rule)

	_, ok = table.Lookup(Q5, One)
	assert.False(t, ok, "accepting state has no rules")

	_, ok = table.Lookup(Q1, One)
	assert.False(t, ok)
}

func TestAdditionTable_Reachable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []State{Q0, Q2, Q3, Q4, Q5}, AdditionTable().Reachable())
}

func TestTable_Rules(t *testing.T) {
	t.Parallel()

	entries := AdditionTable().Rules()
	require.Len(t, entries, 7)

	keys := make([]Key, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	// '+' < '1' < '_' in byte order.
	assert.Equal(t, []Key{
		{Q0, Plus}, {Q0, One},
		{Q2, One}, {Q2, Blank},
		{Q3, One}, {Q3, Blank},
		{Q4, One},
	}, keys)
}

func TestNewTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		start   State
		accept  State
		rules   map[Key]Rule
		wantErr string
	}{
		{
			name:    "invalid start",
			start:   State(9),
			accept:  Q5,
			wantErr: "invalid start state",
		},
		{
			name:    "invalid accept",
			start:   Q0,
			accept:  State(6),
			wantErr: "invalid accepting state",
		},
		{
			name:    "unknown symbol",
			start:   Q0,
			accept:  Q5,
			rules:   map[Key]Rule{{Q0, Symbol('x')}: {Q0, One, Right}},
			wantErr: "symbol outside alphabet",
		},
		{
			name:    "unknown direction",
			start:   Q0,
			accept:  Q5,
			rules:   map[Key]Rule{{Q0, One}: {Q0, One, Direction('U')}},
			wantErr: "unknown direction",
		},
		{
			name:    "next state out of range",
			start:   Q0,
			accept:  Q5,
			rules:   map[Key]Rule{{Q0, One}: {State(7), One, Right}},
			wantErr: "state out of range",
		},
		{
			name:    "rule from accepting state",
			start:   Q0,
			accept:  Q5,
			rules:   map[Key]Rule{{Q5, One}: {Q0, One, Right}},
			wantErr: "accepting state has no outgoing transitions",
		},
		{
			name:   "valid",
			start:  Q0,
			accept: Q5,
			rules:  map[Key]Rule{{Q0, One}: {Q5, One, Stay}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(tt.start, tt.accept, tt.rules)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.rules), table.Len())
		})
	}
}

func TestNewTable_CopiesRules(t *testing.T) {
	t.Parallel()

	rules := map[Key]Rule{{Q0, One}: {Q5, One, Stay}}
	table := MustTable(Q0, Q5, rules)

	rules[Key{Q0, Plus}] = Rule{Q5, Plus, Stay}
	delete(rules, Key{Q0, One})

	assert.Equal(t, 1, table.Len())
	_, ok := table.Lookup(Q0, One)
	assert.True(t, ok)
}

func TestMustTable_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		MustTable(State(42), Q5, nil)
	})
}

func TestParseState(t *testing.T) {
	t.Parallel()

	for i := 0; i < NumStates; i++ {
		s, err := ParseState(State(i).String())
		require.NoError(t, err)
		assert.Equal(t, State(i), s)
	}

	for _, bad := range []string{"", "q6", "x1", "q-1", "q01", "q2x"} {
		_, err := ParseState(bad)
		assert.Error(t, err, bad)
	}
}

func TestDirection_Delta(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -1, Left.Delta())
	assert.Equal(t, 1, Right.Delta())
	assert.Equal(t, 0, Stay.Delta())
	assert.Equal(t, "L", Left.String())
}
