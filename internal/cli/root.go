package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thruflo/turing/internal/config"
	"github.com/thruflo/turing/internal/logging"
	"github.com/thruflo/turing/internal/unary"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	rootDir      string
	rootLogLevel string

	// cfg is loaded before every command runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "turing",
	Short: "Unary addition on a single-tape Turing machine",
	Long: `Turing adds two unary numbers on a deterministic single-tape Turing
machine and records every transition it makes.

Operands are strings of 1s: "111" is three and "" is zero. The machine
rewrites the separator between them to a 1 and erases the last 1, leaving
the sum on the tape.

Configuration is read from .turing/config.yaml under --dir, then .env,
then TURING_* environment variables.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("turing version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootDir, "dir", "", "project directory holding .turing/ (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "log level: debug, info, warn, error (default: from config)")
}

// setup loads configuration and installs the logger.
func setup(cmd *cobra.Command, args []string) error {
	dir, err := baseDir()
	if err != nil {
		return err
	}

	loaded, err := config.LoadConfig(dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := loaded.Log.Level
	if rootLogLevel != "" {
		level = rootLogLevel
	}
	if _, err := logging.Init(logging.Options{
		Level:  logging.ParseLevel(level),
		Output: cmd.ErrOrStderr(),
		File:   loaded.Log.File,
	}); err != nil {
		return err
	}

	cfg = loaded
	logging.Debug("config loaded", "dir", dir, "max_steps", cfg.Engine.MaxSteps, "max_operand", cfg.Limits.MaxOperand)
	return nil
}

// baseDir returns --dir or the working directory.
func baseDir() (string, error) {
	if rootDir != "" {
		return rootDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}

// localSimulator runs requests in this process under the loaded limits.
func localSimulator() *unary.Local {
	return &unary.Local{
		MaxOperand: cfg.Limits.MaxOperand,
		MaxSteps:   cfg.Engine.MaxSteps,
		Logger:     logging.Default().Logger,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ExitCode returns the process exit status for an error from Execute.
func ExitCode(err error) int {
	return unary.ExitCode(err)
}
