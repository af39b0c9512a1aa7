//go:build e2e

// cli_harness_test.go provides a test harness for E2E testing of the turing CLI.
//
// The CLIHarness builds the turing binary and runs commands against an
// isolated workspace with a controlled environment.
package integration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thruflo/turing/internal/config"
)

// CLIHarness manages a turing binary for E2E testing.
type CLIHarness struct {
	// BinaryPath is the path to the built turing binary.
	BinaryPath string

	// WorkDir holds the .turing directory used by every command.
	WorkDir string

	// EnvVars are added to the filtered process environment.
	EnvVars map[string]string

	t *testing.T
}

// CLIResult contains the output from a CLI command execution.
type CLIResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Success returns true if the command completed with exit code 0.
func (r *CLIResult) Success() bool {
	return r.ExitCode == 0 && r.Err == nil
}

// NewCLIHarness builds the turing binary and creates a test workspace.
func NewCLIHarness(t *testing.T) *CLIHarness {
	t.Helper()

	projectRoot := findProjectRoot(t)

	tmpDir := t.TempDir()
	binaryPath := filepath.Join(tmpDir, "turing")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/turing")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build turing binary: %s", output)

	workDir := filepath.Join(tmpDir, "workspace")
	require.NoError(t, os.MkdirAll(filepath.Join(workDir, config.DirName), 0o755))

	return &CLIHarness{
		BinaryPath: binaryPath,
		WorkDir:    workDir,
		EnvVars:    make(map[string]string),
		t:          t,
	}
}

// SetEnv sets an environment variable for subsequent command executions.
func (h *CLIHarness) SetEnv(key, value string) {
	h.EnvVars[key] = value
}

// Run executes a turing command with a 30 second timeout.
func (h *CLIHarness) Run(args ...string) *CLIResult {
	return h.RunWithInput(nil, args...)
}

// RunWithInput executes a turing command with stdin.
func (h *CLIHarness) RunWithInput(stdin io.Reader, args ...string) *CLIResult {
	h.t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := h.Command(ctx, args...)
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &CLIResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.Err = err
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}
	return result
}

// Command prepares a turing command in the workspace without starting it.
func (h *CLIHarness) Command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, h.BinaryPath, append([]string{"--dir", h.WorkDir}, args...)...)
	cmd.Dir = h.WorkDir
	cmd.Env = h.buildEnv()
	return cmd
}

// buildEnv drops TURING_* variables from the process environment so the
// workspace config is authoritative, then adds EnvVars.
func (h *CLIHarness) buildEnv() []string {
	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "TURING_") {
			env = append(env, e)
		}
	}
	for k, v := range h.EnvVars {
		env = append(env, k+"="+v)
	}
	return env
}

// findProjectRoot walks up from the working directory to the go.mod.
func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "failed to get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, parent, dir, "could not find project root (directory containing go.mod)")
		dir = parent
	}
}

// RequireSuccess fails the test if the command result indicates failure.
func (h *CLIHarness) RequireSuccess(result *CLIResult, msg string) {
	h.t.Helper()
	if !result.Success() {
		h.t.Fatalf("%s: exit=%d err=%v\nstdout: %s\nstderr: %s",
			msg, result.ExitCode, result.Err, result.Stdout, result.Stderr)
	}
}
