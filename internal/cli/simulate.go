package cli

import (
	"github.com/spf13/cobra"
	"github.com/thruflo/turing/internal/unary"
)

var (
	simulateA     string
	simulateB     string
	simulateSpeed int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one JSON request and print the JSON trace",
	Long: `Reads a request document from stdin, runs it and writes exactly one
JSON document to stdout: the trace on success, {"error": "..."} otherwise.

Request:   {"a": "111", "b": "11", "speed_ms": 200}
Response:  {"initial_tape": ..., "transitions": [...], "final_tape": ..., "steps": ...}

With --a or --b the request is built from flags instead of stdin.

The exit status is 0 on success, 2 for rejected operands, 3 for operands
over the configured limit and 1 for any other failure. The server's
process mode runs this command once per request.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simulateA, "a", "", "first operand in unary")
	simulateCmd.Flags().StringVar(&simulateB, "b", "", "second operand in unary")
	simulateCmd.Flags().IntVar(&simulateSpeed, "speed-ms", 0, "replay pacing hint in milliseconds")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	req, err := simulateRequest(cmd)
	if err != nil {
		unary.WriteError(out, err)
		return err
	}

	resp, err := localSimulator().Simulate(commandContext(cmd), req)
	if err != nil {
		unary.WriteError(out, err)
		return err
	}
	return unary.WriteJSON(out, resp)
}

func simulateRequest(cmd *cobra.Command) (unary.Request, error) {
	flags := cmd.Flags()
	if !flags.Changed("a") && !flags.Changed("b") {
		return unary.DecodeRequest(cmd.InOrStdin())
	}

	req := unary.Request{A: simulateA, B: simulateB}
	if flags.Changed("speed-ms") {
		speed := simulateSpeed
		req.SpeedMS = &speed
	}
	return req, nil
}
