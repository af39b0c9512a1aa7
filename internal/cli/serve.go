package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thruflo/turing/internal/config"
	"github.com/thruflo/turing/internal/logging"
	"github.com/thruflo/turing/internal/runner"
	"github.com/thruflo/turing/internal/server"
	"github.com/thruflo/turing/internal/unary"
	"github.com/thruflo/turing/web"
)

var (
	servePort   int
	serveMode   string
	serveBinary string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulation API and the replay client",
	Long: `Start an HTTP server exposing the machine:

  POST /api/simulate   run a request, returns the trace
  GET  /api/replay     stream the trace as server-sent events
  GET  /api/table      the transition table
  GET  /               browser replay client

In "inprocess" mode requests run on an in-process machine. In "process"
mode each request starts a fresh 'turing simulate' child, so no state is
shared between requests.

If a password was set with 'turing password', clients must authenticate
via POST /auth first.

Example:
  turing serve
  turing serve --port 9000 --mode process`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultServerPort, "port to listen on")
	serveCmd.Flags().StringVar(&serveMode, "mode", config.ModeInProcess, "simulation mode: inprocess or process")
	serveCmd.Flags().StringVar(&serveBinary, "binary", "", "executable for process mode (default: this binary)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	dir, err := baseDir()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = servePort
	}
	if flags.Changed("mode") {
		cfg.Server.Mode = serveMode
	}
	if flags.Changed("binary") {
		cfg.Server.Binary = serveBinary
	}
	if err := config.ValidateServerConfig(&cfg.Server); err != nil {
		return err
	}

	sim := newSimulator(dir)
	logger := logging.Default().Logger

	srv, err := server.NewServerFromConfig(cfg, sim, web.GetAssetsWithBase(dir), logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://localhost:%d (mode: %s)\n", cfg.Server.Port, cfg.Server.Mode)
	if cfg.Server.PasswordHash == "" {
		logger.Warn("no server password set; the API is open (see 'turing password')")
	}

	return srv.Start(ctx)
}

// newSimulator builds the simulator for the configured server mode.
func newSimulator(dir string) unary.Simulator {
	if cfg.Server.Mode != config.ModeProcess {
		return localSimulator()
	}

	args := []string{"simulate", "--dir", dir, "--log-level", "error"}
	if cfg.Server.Binary != "" {
		// A foreign binary gets only the subcommand.
		args = []string{"simulate"}
	}
	return &runner.Runner{
		Binary:  cfg.Server.Binary,
		Args:    args,
		Timeout: cfg.Server.ProcessTimeout,
		Env:     childEnv(),
		Logger:  logging.Default().Logger,
	}
}

// childEnv pins the child's limits to the parent's, whatever its own
// config directory says.
func childEnv() []string {
	return []string{
		fmt.Sprintf("TURING_MAX_STEPS=%d", cfg.Engine.MaxSteps),
		fmt.Sprintf("TURING_MAX_OPERAND=%d", cfg.Limits.MaxOperand),
	}
}
