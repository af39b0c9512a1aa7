package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/turing/internal/unary"
)

// TestHelperProcess is not a real test. It stands in for `turing simulate`
// when the test binary re-executes itself with TURING_HELPER_PROCESS=1.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("TURING_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("TURING_HELPER_MODE") {
	case "ok":
		req, err := unary.DecodeRequest(os.Stdin)
		if err != nil {
			unary.WriteError(os.Stdout, err)
			os.Exit(1)
		}
		resp, err := (&unary.Local{}).Simulate(context.Background(), req)
		if err != nil {
			unary.WriteError(os.Stdout, err)
			os.Exit(1)
		}
		unary.WriteJSON(os.Stdout, resp)
	case "garbage":
		fmt.Fprint(os.Stdout, "not json")
	case "crash":
		fmt.Fprint(os.Stderr, "panic: something broke")
		os.Exit(2)
	case "silent-failure":
		fmt.Fprint(os.Stdout, `{"initial_tape":"+","transitions":[],"final_tape":"_","steps":0}`)
		os.Exit(3)
	case "inconsistent":
		fmt.Fprint(os.Stdout, `{"initial_tape":"+","transitions":[],"final_tape":"_","steps":3}`)
	case "sleep":
		time.Sleep(10 * time.Second)
	}
	os.Exit(0)
}

func helperRunner(mode string) *Runner {
	return &Runner{
		Binary: os.Args[0],
		Args:   []string{"-test.run=^TestHelperProcess$"},
		Env:    []string{"TURING_HELPER_PROCESS=1", "TURING_HELPER_MODE=" + mode},
	}
}

func TestRunner_Simulate(t *testing.T) {
	t.Parallel()

	resp, err := helperRunner("ok").Simulate(context.Background(), unary.Request{A: "111", B: "11"})
	require.NoError(t, err)

	assert.Equal(t, "111+11", resp.InitialTape)
	assert.Equal(t, "11111", resp.FinalTape)
	assert.Equal(t, 8, resp.Steps)
	assert.Len(t, resp.Transitions, 8)
	assert.Equal(t, 5, resp.Sum())
}

func TestRunner_MatchesLocal(t *testing.T) {
	t.Parallel()

	req := unary.Request{A: "", B: "11111"}
	remote, err := helperRunner("ok").Simulate(context.Background(), req)
	require.NoError(t, err)

	local, err := (&unary.Local{}).Simulate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, local, remote)
}

func TestRunner_RemoteError(t *testing.T) {
	t.Parallel()

	_, err := helperRunner("ok").Simulate(context.Background(), unary.Request{A: "1+1+1", B: "1"})
	require.Error(t, err)

	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, 1, remote.ExitCode)
	assert.Contains(t, remote.Message, `invalid a "1+1+1"`)
}

func TestRunner_TransportErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode    string
		wantErr string
	}{
		{"garbage", "unparsable simulation output"},
		{"crash", "exit status 2: panic: something broke"},
		{"silent-failure", "exit status 3 without error document"},
		{"inconsistent", "3 steps but 0 transitions"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.mode, func(t *testing.T) {
			t.Parallel()

			_, err := helperRunner(tt.mode).Simulate(context.Background(), unary.Request{A: "1", B: "1"})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadOutput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunner_StartFailure(t *testing.T) {
	t.Parallel()

	r := &Runner{Binary: "/nonexistent/turing"}
	_, err := r.Simulate(context.Background(), unary.Request{A: "1", B: "1"})
	assert.ErrorIs(t, err, ErrStart)
}

func TestRunner_Timeout(t *testing.T) {
	t.Parallel()

	r := helperRunner("sleep")
	r.Timeout = 200 * time.Millisecond

	start := time.Now()
	_, err := r.Simulate(context.Background(), unary.Request{A: "1", B: "1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestTrim(t *testing.T) {
	t.Parallel()

	long := make([]byte, maxStderr+10)
	for i := range long {
		long[i] = 'x'
	}
	got := trim(string(long))
	assert.Len(t, got, maxStderr+3)
	assert.Equal(t, "ok", trim("  ok\n"))
}
