package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/thruflo/turing/internal/history"
	"github.com/thruflo/turing/internal/logging"
	"github.com/thruflo/turing/internal/render"
	"github.com/thruflo/turing/internal/unary"
)

var (
	runTrace   bool
	runAnimate bool
	runSpeed   int
	runSave    bool
	runJSON    bool
	runDecimal bool
)

var runCmd = &cobra.Command{
	Use:   "run <a> <b>",
	Short: "Add two numbers on the machine",
	Long: `Run the addition machine on two operands and print the sum.

Operands are unary strings of 1s; pass "" for zero. With --decimal they
are read as non-negative integers instead.

Example:
  turing run 111 11
  turing run --trace 1 1
  turing run --decimal --animate --speed 150 4 4
  turing run --save --json 11 ""`,
	Args: cobra.ExactArgs(2),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "print every transition")
	runCmd.Flags().BoolVar(&runAnimate, "animate", false, "replay the run on the terminal")
	runCmd.Flags().IntVar(&runSpeed, "speed", 300, "milliseconds per frame with --animate")
	runCmd.Flags().BoolVar(&runSave, "save", false, "record the run in .turing/runs")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the JSON trace")
	runCmd.Flags().BoolVarP(&runDecimal, "decimal", "d", false, "read operands as decimal integers")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	if runSpeed < 0 {
		return &unary.InputError{Field: "speed", Value: strconv.Itoa(runSpeed), Reason: "must be non-negative"}
	}

	req, err := runRequest(args[0], args[1])
	if err != nil {
		return err
	}
	a, b, err := req.Operands()
	if err != nil {
		return err
	}

	resp, err := localSimulator().Simulate(ctx, req)
	if err != nil {
		return err
	}

	if runSave {
		dir, err := baseDir()
		if err != nil {
			return err
		}
		rec, err := history.NewStore(dir).Save(a, b, resp)
		if err != nil {
			return err
		}
		logging.Info("run saved", "id", rec.ID)
	}

	switch {
	case runJSON:
		return unary.WriteJSON(out, resp)
	case runAnimate:
		return render.Replay(ctx, out, resp, time.Duration(runSpeed)*time.Millisecond)
	case runTrace:
		return render.Trace(out, resp)
	}

	_, err = fmt.Fprintf(out, "%d + %d = %d (%d steps, final tape %s)\n", a, b, resp.Sum(), resp.Steps, resp.FinalTape)
	return err
}

// runRequest builds a request from positional operands.
func runRequest(a, b string) (unary.Request, error) {
	if !runDecimal {
		return unary.Request{A: a, B: b}, nil
	}
	ua, err := decimalOperand("a", a)
	if err != nil {
		return unary.Request{}, err
	}
	ub, err := decimalOperand("b", b)
	if err != nil {
		return unary.Request{}, err
	}
	return unary.Request{A: ua, B: ub}, nil
}

// decimalOperand converts a decimal operand to unary, applying the size
// limits before the string is built.
func decimalOperand(field, s string) (string, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return "", &unary.InputError{Field: field, Value: s, Reason: "not a decimal integer"}
	}
	if err := unary.CheckOperand(field, n); err != nil {
		return "", err
	}
	if err := unary.CheckLimit(field, n, localSimulator().OperandLimit()); err != nil {
		return "", err
	}
	return unary.EncodeOperand(field, n)
}
