// Package runner simulates requests in a child process. Each request starts
// one `turing simulate` invocation, writes the request JSON to its stdin and
// reads one response document from its stdout. No state survives between
// invocations.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/thruflo/turing/internal/unary"
)

var (
	// ErrStart is returned when the child process cannot be started.
	ErrStart = errors.New("failed to start simulation process")

	// ErrBadOutput is returned when the child's output is not a response.
	ErrBadOutput = errors.New("unparsable simulation output")
)

// RemoteError carries an {"error": ...} document produced by the child.
type RemoteError struct {
	Message  string
	ExitCode int
}

func (e *RemoteError) Error() string {
	return e.Message
}

// DefaultTimeout bounds one invocation when Runner.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// maxStderr bounds how much child stderr is quoted in errors.
const maxStderr = 512

// Runner implements unary.Simulator with one child process per request.
type Runner struct {
	Binary  string   // executable; empty means the running executable
	Args    []string // arguments; nil means ["simulate"]
	Env     []string // extra KEY=VALUE entries appended to the environment
	Timeout time.Duration
	Logger  *slog.Logger
}

var _ unary.Simulator = (*Runner)(nil)

// Simulate runs req in a fresh child process.
func (r *Runner) Simulate(ctx context.Context, req unary.Request) (*unary.Response, error) {
	binary, err := r.binary()
	if err != nil {
		return nil, err
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	args := r.Args
	if args == nil {
		args = []string{"simulate"}
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = bytes.NewReader(body)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	started := time.Now()
	runErr := cmd.Run()
	r.debug("simulation process exited",
		"binary", binary,
		"duration", time.Since(started),
		"stdout_bytes", stdout.Len(),
		"error", runErr)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("simulation process: %w", ctxErr)
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("%w: %v", ErrStart, runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	return decode(stdout.Bytes(), exitCode, stderr.String())
}

func decode(out []byte, exitCode int, stderr string) (*unary.Response, error) {
	var doc struct {
		unary.Response
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		if exitCode != 0 {
			return nil, fmt.Errorf("%w: exit status %d: %s", ErrBadOutput, exitCode, trim(stderr))
		}
		return nil, fmt.Errorf("%w: %v", ErrBadOutput, err)
	}

	if doc.Error != nil {
		return nil, &RemoteError{Message: *doc.Error, ExitCode: exitCode}
	}
	if exitCode != 0 {
		return nil, fmt.Errorf("%w: exit status %d without error document", ErrBadOutput, exitCode)
	}
	if doc.Steps != len(doc.Transitions) {
		return nil, fmt.Errorf("%w: %d steps but %d transitions", ErrBadOutput, doc.Steps, len(doc.Transitions))
	}

	resp := doc.Response
	return &resp, nil
}

func (r *Runner) binary() (string, error) {
	if r.Binary != "" {
		return r.Binary, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStart, err)
	}
	return exe, nil
}

func (r *Runner) debug(msg string, args ...any) {
	if r.Logger != nil {
		r.Logger.Debug(msg, args...)
	}
}

func trim(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		return s[:maxStderr] + "..."
	}
	return s
}
