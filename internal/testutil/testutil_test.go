package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/turing/internal/config"
	"github.com/thruflo/turing/internal/unary"
)

func TestWorkedExamples(t *testing.T) {
	sim := &unary.Local{}
	for _, ex := range WorkedExamples() {
		t.Run(ex.Name(), func(t *testing.T) {
			assert.Equal(t, ex.A+ex.B, ex.Sum)
			assert.Equal(t, ex.A+ex.B+3, ex.Steps)

			resp, err := sim.Simulate(context.Background(), ex.Request())
			require.NoError(t, err)
			AssertWorkedExample(t, ex, resp)
		})
	}
}

func TestWorkedExamples_ReturnsCopy(t *testing.T) {
	a := WorkedExamples()
	a[0].Sum = -1
	assert.Equal(t, 5, WorkedExamples()[0].Sum)
}

func TestSampleConfig(t *testing.T) {
	dir := SetupTestDir(t)
	WriteConfig(t, dir, SampleConfig)

	cfg, err := config.Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Engine.MaxSteps)
	assert.Equal(t, 12, cfg.Limits.MaxOperand)
	assert.Equal(t, config.ModeProcess, cfg.Server.Mode)
	assert.Equal(t, 30*time.Second, cfg.Server.RateLimit.Window)
}

func TestSetupTestDir(t *testing.T) {
	dir := SetupTestDir(t)
	info, err := os.Stat(filepath.Join(dir, config.DirName))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriteTestFile(t *testing.T) {
	dir := t.TempDir()
	WriteTestFile(t, dir, "a/b/c.txt", []byte("x"))

	data, err := os.ReadFile(filepath.Join(dir, "a", "b", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestContextWithTestDeadline(t *testing.T) {
	ctx, cancel := ContextWithTestDeadline(t, 100*time.Millisecond)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	remaining := time.Until(deadline)
	assert.Greater(t, remaining, time.Duration(0))
	assert.LessOrEqual(t, remaining, 100*time.Millisecond)
}

func TestShortOperationContext(t *testing.T) {
	ctx, cancel := ShortOperationContext(t)
	defer cancel()

	_, ok := ctx.Deadline()
	assert.True(t, ok)
}
