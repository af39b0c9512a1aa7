package machine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_WorkedExamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b      int
		initial   string
		final     string
		sum       int
		wantSteps int
	}{
		{3, 2, "111+11", "11111", 5, 8},
		{2, 3, "11+111", "11111", 5, 8},
		{5, 1, "11111+1", "111111", 6, 9},
		{1, 1, "1+1", "11", 2, 5},
		{0, 5, "+11111", "11111", 5, 8},
		{4, 4, "1111+1111", "11111111", 8, 11},
		{3, 0, "111+", "111", 3, 6},
		{0, 0, "+", "_", 0, 3},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.initial, func(t *testing.T) {
			t.Parallel()

			res, err := New().Run(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.initial, res.InitialTape)
			assert.Equal(t, tt.final, res.FinalTape)
			assert.Equal(t, tt.sum, res.Sum)
			assert.Equal(t, tt.wantSteps, res.Steps)
		})
	}
}

func TestRun_SumAndStepCount(t *testing.T) {
	t.Parallel()

	for a := 0; a <= 12; a++ {
		for b := 0; b <= 12; b++ {
			m := New()
			res, err := m.Run(a, b)
			require.NoError(t, err, "a=%d b=%d", a, b)
			assert.Equal(t, a+b, res.Sum, "a=%d b=%d", a, b)
			assert.Equal(t, a+b+3, res.Steps, "a=%d b=%d", a, b)
			assert.Equal(t, a+b, Decode(res.FinalTape), "a=%d b=%d", a, b)
			assert.Len(t, m.Log(), res.Steps)
			assert.Equal(t, Q5, m.State())
			assert.True(t, m.Halted())
		}
	}
}

func TestRun_ZeroZero(t *testing.T) {
	t.Parallel()

	m := New()
	res, err := m.Run(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Sum)
	assert.Equal(t, "_", res.FinalTape)
	assert.Equal(t, 3, res.Steps)

	log := m.Log()
	require.Len(t, log, 3)
	assert.Equal(t, Step{Number: 1, State: Q0, Head: 1, Read: Plus, Write: One, Move: Right, Next: Q2, NextHead: 2, Tape: "+", TapeStart: 1}, log[0])
	assert.Equal(t, Step{Number: 2, State: Q2, Head: 2, Read: Blank, Write: Blank, Move: Left, Next: Q4, NextHead: 1, Tape: "1", TapeStart: 1}, log[1])
	assert.Equal(t, Step{Number: 3, State: Q4, Head: 1, Read: One, Write: Blank, Move: Stay, Next: Q5, NextHead: 1, Tape: "1", TapeStart: 1}, log[2])
}

func TestRun_Trace(t *testing.T) {
	t.Parallel()

	m := New()
	_, err := m.Run(1, 1)
	require.NoError(t, err)

	want := []Step{
		{1, Q0, 1, One, One, Right, Q0, 2, "1+1", 1},
		{2, Q0, 2, Plus, One, Right, Q2, 3, "1+1", 1},
		{3, Q2, 3, One, One, Right, Q3, 4, "111", 1},
		{4, Q3, 4, Blank, Blank, Left, Q4, 3, "111", 1},
		{5, Q4, 3, One, Blank, Stay, Q5, 3, "111", 1},
	}
	assert.Equal(t, want, m.Log())
	assert.Equal(t, "11", m.Tape())
	assert.Equal(t, 3, m.Head())
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	first := New()
	_, err := first.Run(4, 3)
	require.NoError(t, err)

	second := New()
	_, err = second.Run(4, 3)
	require.NoError(t, err)
	assert.Equal(t, first.Log(), second.Log())

	// Re-running the same instance starts from a clean log.
	_, err = first.Run(1, 0)
	require.NoError(t, err)
	_, err = first.Run(4, 3)
	require.NoError(t, err)
	assert.Equal(t, second.Log(), first.Log())
}

func TestLog_ReturnsCopy(t *testing.T) {
	t.Parallel()

	m := New()
	_, err := m.Run(2, 2)
	require.NoError(t, err)

	log := m.Log()
	log[0].Tape = "mutated"
	assert.NotEqual(t, "mutated", m.Log()[0].Tape)
}

func TestInitialize(t *testing.T) {
	t.Parallel()

	t.Run("head on first operand", func(t *testing.T) {
		m := New()
		require.NoError(t, m.Initialize(2, 1))
		assert.Equal(t, 1, m.Head())
		assert.Equal(t, One, m.Symbol())
		assert.Equal(t, Q0, m.State())
		assert.Equal(t, 0, m.Steps())
		assert.Empty(t, m.Log())
		assert.Equal(t, "11+1", m.Tape())
	})

	t.Run("head on separator when a is zero", func(t *testing.T) {
		m := New()
		require.NoError(t, m.Initialize(0, 3))
		assert.Equal(t, 1, m.Head())
		assert.Equal(t, Plus, m.Symbol())
	})

	t.Run("negative operands", func(t *testing.T) {
		m := New()

		err := m.Initialize(-3, 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNegativeOperand))
		var opErr *OperandError
		require.True(t, errors.As(err, &opErr))
		assert.Equal(t, "a", opErr.Name)

		err = m.Initialize(1, -1)
		require.True(t, errors.As(err, &opErr))
		assert.Equal(t, "b", opErr.Name)

		_, err = m.Run(-1, 0)
		assert.ErrorIs(t, err, ErrNegativeOperand)
	})

	t.Run("operands too large for the tape", func(t *testing.T) {
		tests := []struct {
			name string
			a, b int
		}{
			{"sum overflows", math.MaxInt, 1},
			{"both at max", math.MaxInt, math.MaxInt},
			{"one past the tape", MaxTapeLen - 3, 1},
			{"b alone", 0, MaxTapeLen},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				m := New()
				err := m.Initialize(tt.a, tt.b)
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrOperandTooLarge)
				assert.NotErrorIs(t, err, ErrNegativeOperand)

				var opErr *OperandError
				require.True(t, errors.As(err, &opErr))
				assert.Equal(t, "a+b", opErr.Name)

				_, err = Add(tt.a, tt.b)
				assert.ErrorIs(t, err, ErrOperandTooLarge)
			})
		}
	})
}

func TestEncode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "11+1", Encode(2, 1))
	assert.Equal(t, "+", Encode(0, 0))
	assert.Equal(t, "", Encode(-1, 2))
	assert.Equal(t, "", Encode(math.MaxInt, 1))
}

func TestStep(t *testing.T) {
	t.Parallel()

	t.Run("before initialize", func(t *testing.T) {
		_, err := New().Step()
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("manual stepping", func(t *testing.T) {
		m := New()
		require.NoError(t, m.Initialize(1, 0))

		var halted bool
		var err error
		for i := 0; i < 4 && !halted; i++ {
			halted, err = m.Step()
			require.NoError(t, err)
		}
		assert.True(t, halted)
		assert.Equal(t, 4, m.Steps())
		assert.Equal(t, "1", m.Tape())
	})

	t.Run("no-op once halted", func(t *testing.T) {
		m := New()
		_, err := m.Run(2, 1)
		require.NoError(t, err)
		steps := m.Steps()

		halted, err := m.Step()
		require.NoError(t, err)
		assert.True(t, halted)
		assert.Equal(t, steps, m.Steps())
		assert.Len(t, m.Log(), steps)
	})
}

func TestRun_UndefinedTransition(t *testing.T) {
	t.Parallel()

	// Drop the rule for the separator so q0 stalls on it.
	table := MustTable(Q0, Q5, map[Key]Rule{
		{Q0, One}: {Q0, One, Right},
	})
	m := New(WithTable(table))

	res, err := m.Run(2, 2)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUndefinedTransition)
	assert.False(t, m.Halted())

	var trErr *TransitionError
	require.True(t, errors.As(err, &trErr))
	assert.Equal(t, Q0, trErr.State)
	assert.Equal(t, Plus, trErr.Read)
	assert.Equal(t, 3, trErr.Head)
	assert.Equal(t, 2, trErr.Step)
	assert.Len(t, m.Log(), 2)

	// The failure is sticky until the next Initialize.
	_, err = m.Step()
	assert.ErrorIs(t, err, ErrUndefinedTransition)
}

func TestRun_StepLimit(t *testing.T) {
	t.Parallel()

	// Walks right forever, never reaching q5.
	table := MustTable(Q0, Q5, map[Key]Rule{
		{Q0, One}:   {Q0, One, Right},
		{Q0, Plus}:  {Q0, Plus, Right},
		{Q0, Blank}: {Q0, Blank, Right},
	})
	m := New(WithTable(table), WithMaxSteps(50))

	_, err := m.Run(1, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStepLimit)
	assert.NotErrorIs(t, err, ErrUndefinedTransition)

	var rErr *RunawayError
	require.True(t, errors.As(err, &rErr))
	assert.Equal(t, 50, rErr.Limit)
	assert.Equal(t, 50, m.Steps())
	assert.Equal(t, 51, m.Head())
}

func TestRun_LeftGrowth(t *testing.T) {
	t.Parallel()

	// Walks left past the leading sentinel, writes a one, then halts.
	table := MustTable(Q0, Q5, map[Key]Rule{
		{Q0, One}:   {Q0, One, Left},
		{Q0, Blank}: {Q2, Blank, Left},
		{Q2, Blank}: {Q5, One, Stay},
	})
	m := New(WithTable(table))

	res, err := m.Run(1, 0)
	require.NoError(t, err)
	assert.Equal(t, -1, m.Head())
	assert.Equal(t, "1_1+", res.FinalTape)
	assert.Equal(t, 2, res.Sum)
}

func TestRun_SnapshotStart(t *testing.T) {
	t.Parallel()

	// Writes a one left of the leading sentinel, then walks back onto it.
	table := MustTable(Q0, Q5, map[Key]Rule{
		{Q0, One}:   {Q0, One, Left},
		{Q0, Blank}: {Q2, One, Left},
		{Q2, Blank}: {Q3, Blank, Right},
		{Q3, One}:   {Q5, One, Stay},
	})
	m := New(WithTable(table))

	res, err := m.Run(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "11+", res.FinalTape)

	log := m.Log()
	require.Len(t, log, 4)
	for i, want := range []struct {
		tape  string
		start int
	}{
		{"1+", 1},
		{"1+", 1},
		{"11+", 0},
		{"11+", 0},
	} {
		assert.Equal(t, want.tape, log[i].Tape, "step %d", i+1)
		assert.Equal(t, want.start, log[i].TapeStart, "step %d", i+1)
	}
}

func TestAdd(t *testing.T) {
	t.Parallel()

	sum, err := Add(7, 8)
	require.NoError(t, err)
	assert.Equal(t, 15, sum)

	_, err = Add(-1, 2)
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	m := New(WithMaxSteps(0), WithTable(nil))
	assert.Equal(t, DefaultMaxSteps, m.MaxSteps())
	assert.Equal(t, 7, m.Table().Len())
}
